// Package paths resolves where envmerge reads and writes files.
//
// Directories follow the XDG Base Directory layout through adrg/xdg, each
// with an ENVMERGE_*_DIR override:
//
//	config:  $XDG_CONFIG_HOME/envmerge   (ENVMERGE_CONFIG_DIR)
//	data:    $XDG_DATA_HOME/envmerge     (ENVMERGE_DATA_DIR)
//	state:   $XDG_STATE_HOME/envmerge    (ENVMERGE_STATE_DIR)
//
// The contributor root, holding one directory per contributor, is taken from
// the explicit argument to New, then ENVMERGE_ROOT, then
// <data>/contributors.
package paths
