// Package contributors discovers contributor directories and reads their
// declaration files.
//
// Every immediate subdirectory of the contributor root is a contributor whose
// id is the directory name. The first declaration file found in it (env.toml,
// env.yaml or env.yml by default) lists its mutators in order:
//
//	persistent = false
//
//	[[mutator]]
//	variable = "PATH"
//	type = "prepend"
//	value = "/opt/tool/bin:"
//
// Hidden directories, directories matching an ignore pattern and directories
// holding an .envmergeignore file are skipped. Contributors are returned
// sorted by id, which is the order they are registered in.
package contributors
