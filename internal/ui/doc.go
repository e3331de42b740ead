// Package ui holds the line-oriented output helpers used by plantdash's
// commands: an animated spinner for backend mutations, sparklines for the
// watch feed, tables for saved profiles and doctor results, and the
// command banner.
//
// Colors are plain ANSI codes so the output survives pipes and basic
// terminals. DisableColors switches everything to ASCII for --no-color.
//
//	err := ui.Run(os.Stderr, "Saving configuration", func() error {
//		_, err := ctrl.SubmitSetup(ctx, req)
//		return err
//	})
//
// SpinnerFrames is shared with the full-screen dashboard so both show the
// same busy indicator.
package ui
