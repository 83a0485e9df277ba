// Package testutil builds throwaway envmerge environments for tests.
//
// A TestEnvironment owns a contributor root, the envmerge directories and a
// filesystem. EnvMemoryOnly keeps everything in an afero memory filesystem;
// EnvIsolated uses the real filesystem under t.TempDir() and points the
// ENVMERGE_* variables at it so commands run end to end.
package testutil
