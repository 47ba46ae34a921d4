package command

// OplistSub is one parsed /oplist subcommand. Unlike the whitelist
// there is no on/off state and no reverify.
type OplistSub interface{ isOplistSub() }

type (
	OplistAdd    struct{ Args string }
	OplistRemove struct{ Args string }
	OplistLoad   struct{ Replace bool }
	OplistSave   struct{}
	OplistStatus struct{}
	OplistHelp   struct{}
)

func (OplistAdd) isOplistSub()    {}
func (OplistRemove) isOplistSub() {}
func (OplistLoad) isOplistSub()   {}
func (OplistSave) isOplistSub()   {}
func (OplistStatus) isOplistSub() {}
func (OplistHelp) isOplistSub()   {}

// OplistDefs documents the /oplist subcommands.
var OplistDefs = []Def{
	{Name: "add", Args: "<user | key>...", Help: "Add users or keys to the operators list"},
	{Name: "remove", Args: "<user | key>...", Help: "Remove users or keys from the operators list"},
	{Name: "load", Args: "merge | replace", Help: "Load public keys from oplist file and merge it with or replace the in-memory data"},
	{Name: "save", Help: "Export public keys to the oplist file, overwriting the existing file content"},
	{Name: "status", Help: "Show status information"},
	{Name: "help"},
}

func parseOplistSub(args string) (OplistSub, error) {
	sub, rest := split(args)
	if sub == "" {
		return nil, errArgExpected("oplist command")
	}
	switch sub {
	case "add":
		if rest == "" {
			return nil, errArgExpected("list of users or keys")
		}
		return OplistAdd{Args: rest}, nil
	case "remove":
		if rest == "" {
			return nil, errArgExpected("list of users or keys")
		}
		return OplistRemove{Args: rest}, nil
	case "load":
		replace, err := parseLoadMode(rest)
		if err != nil {
			return nil, err
		}
		return OplistLoad{Replace: replace}, nil
	case "save":
		return OplistSave{}, nil
	case "status":
		return OplistStatus{}, nil
	case "help":
		return OplistHelp{}, nil
	}
	return nil, errUnknown()
}
