package cli

import (
	"github.com/arthur-debert/envmerge/pkg/core"
	"github.com/arthur-debert/envmerge/pkg/ui"
)

// statusView converts a session status into its renderable form
func statusView(st *core.Status) ui.StatusView {
	view := ui.StatusView{Stale: st.Stale(), Diff: st.Diff}
	if st.Applied != nil {
		at := st.Applied.At
		view.AppliedAt = &at
	}
	return view
}
