package cli

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Merge environment variable changes from many contributors"
	MsgShowShort       = "Show the merged collection"
	MsgEnvShort        = "Print the environment with all mutators applied"
	MsgExecShort       = "Run a command in the mutated environment"
	MsgSetShort        = "Register a collection for a contributor"
	MsgDeleteShort     = "Remove a contributor's collection"
	MsgStatusShort     = "Compare the merged collection with the last applied one"
	MsgServeShort      = "Serve the registry over HTTP"
	MsgVersionShort    = "Show version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgSnippetShort    = "Output the shell profile line that loads the environment"

	// Status messages
	MsgCollectionSet     = "Registered %d mutator(s) for %s"
	MsgCollectionDeleted = "Removed %s"
	MsgNotRegistered     = "%s was not registered"
	MsgServing           = "Serving on %s"

	// Errors
	MsgErrNoCommand      = "no command specified"
	MsgErrMutatorSyntax  = "invalid mutator %q: expected VAR=TYPE:VALUE"
	MsgErrNotPersistent  = "%s would only be registered for this run; pass --persistent to save it"
	MsgErrDeclaredOnDisk = "%s is declared in %s; remove or ignore that directory instead"
)

// Long descriptions
const (
	MsgRootLong = `envmerge collects environment variable mutators from independent
contributors and merges them into one deterministic result.

Each contributor declares, per variable, whether its value replaces,
appends to or prepends to the current value. Contributors are merged in
registration order and the result is applied on top of an environment
snapshot.`

	MsgShowLong = `Show prints every variable of the merged collection together with the
mutators that apply to it and the contributor that declared each one.

With --contributors the registered collections are listed instead, in
registration order.`

	MsgEnvLong = `Env applies the merged collection to the current environment and prints
the variables it changed. Use --all to print the whole environment and
--empty to start from an empty one.

Printing records the merged collection as applied, which is what
'envmerge status' compares against. Pass --no-record to skip that.`

	MsgExecLong = `Exec applies the merged collection to the current environment and runs
the given command with the result.`

	MsgSetLong = `Set registers a collection for a contributor, replacing any collection
the contributor registered before. Mutators are written as VAR=TYPE:VALUE
where TYPE is replace, append or prepend.

Every envmerge command starts from the declarations on disk, so a
collection set from the command line must be marked --persistent. It is
then saved and registered again on every run.`

	MsgStatusLong = `Status reports whether the merged collection differs from the one that
was last applied, and lists the variables that were added, changed or
removed since.`

	MsgSnippetLong = `Snippet prints the line to add to a shell profile so that every new
shell starts with the merged environment applied.`

	MsgServeLong = `Serve exposes the registry over HTTP so other processes can register
collections and apply the merged result to their own environment.`
)

// Examples
const (
	MsgShowExample = `  # Show the merged collection
  envmerge show

  # List registered collections as JSON
  envmerge show --contributors --format json`

	MsgEnvExample = `  # Load the environment into the current shell
  eval "$(envmerge env)"

  # Print everything as a dotenv file
  envmerge env --all --shell dotenv`

	MsgExecExample = `  envmerge exec -- make test`

	MsgSetExample = `  envmerge set --persistent tools 'PATH=prepend:/opt/tools/bin:' 'EDITOR=replace:vim'
  envmerge set -p java 'JAVA_HOME=replace:/opt/jdk'`

	MsgSnippetExample = `  envmerge snippet bash >> ~/.bashrc
  envmerge snippet fish >> ~/.config/fish/config.fish`

	MsgServeExample = `  envmerge serve --addr 127.0.0.1:7788`
)
