package command

// WhitelistSub is one parsed /whitelist subcommand.
type WhitelistSub interface{ isWhitelistSub() }

type (
	WhitelistOn       struct{}
	WhitelistOff      struct{}
	WhitelistAdd      struct{ Args string }
	WhitelistRemove   struct{ Args string }
	WhitelistLoad     struct{ Replace bool }
	WhitelistSave     struct{}
	WhitelistReverify struct{}
	WhitelistStatus   struct{}
	WhitelistHelp     struct{}
)

func (WhitelistOn) isWhitelistSub()       {}
func (WhitelistOff) isWhitelistSub()      {}
func (WhitelistAdd) isWhitelistSub()      {}
func (WhitelistRemove) isWhitelistSub()   {}
func (WhitelistLoad) isWhitelistSub()     {}
func (WhitelistSave) isWhitelistSub()     {}
func (WhitelistReverify) isWhitelistSub() {}
func (WhitelistStatus) isWhitelistSub()   {}
func (WhitelistHelp) isWhitelistSub()     {}

// WhitelistDefs documents the /whitelist subcommands for its help
// output and for autocompletion.
var WhitelistDefs = []Def{
	{Name: "on", Help: "Enable whitelist mode (applies to new connections only)"},
	{Name: "off", Help: "Disable whitelist mode (applies to new connections only)"},
	{Name: "add", Args: "<user | key>...", Help: "Add users or keys to the trusted keys"},
	{Name: "remove", Args: "<user | key>...", Help: "Remove users or keys from the trusted keys"},
	{Name: "load", Args: "merge | replace", Help: "Load public keys from whitelist file and merge it with or replace the in-memory data"},
	{Name: "save", Help: "Export public keys to the whitelist file, overwriting the existing file content"},
	{Name: "reverify", Help: "Kick all users not in the whitelist"},
	{Name: "status", Help: "Show status information"},
	{Name: "help"},
}

func parseWhitelistSub(args string) (WhitelistSub, error) {
	sub, rest := split(args)
	if sub == "" {
		return nil, errArgExpected("whitelist command")
	}
	switch sub {
	case "on":
		return WhitelistOn{}, nil
	case "off":
		return WhitelistOff{}, nil
	case "add":
		if rest == "" {
			return nil, errArgExpected("list of users or keys")
		}
		return WhitelistAdd{Args: rest}, nil
	case "remove":
		if rest == "" {
			return nil, errArgExpected("list of users or keys")
		}
		return WhitelistRemove{Args: rest}, nil
	case "load":
		replace, err := parseLoadMode(rest)
		if err != nil {
			return nil, err
		}
		return WhitelistLoad{Replace: replace}, nil
	case "save":
		return WhitelistSave{}, nil
	case "reverify":
		return WhitelistReverify{}, nil
	case "status":
		return WhitelistStatus{}, nil
	case "help":
		return WhitelistHelp{}, nil
	}
	return nil, errUnknown()
}

func parseLoadMode(mode string) (bool, error) {
	switch mode {
	case "merge":
		return false, nil
	case "replace":
		return true, nil
	}
	return false, errOther("load mode value must be one of: merge, replace")
}
