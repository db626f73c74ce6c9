package mbus

import "strings"

type ModuleIdentifier struct {
	MainIdent string
	SubIdent  string
}

//Compare returns 0 for no match, 1 when only MainIdent matches and 2 for a full match. "*" as other's SubIdent matches any SubIdent
func (mi ModuleIdentifier) Compare(other ModuleIdentifier) int {
	ret := 0
	if mi.MainIdent == other.MainIdent {
		ret++
		if other.SubIdent == "*" || mi.SubIdent == other.SubIdent {
			ret++
		}
	}
	return ret
}

func (mi ModuleIdentifier) String() string {
	return mi.MainIdent + ":" + mi.SubIdent
}

func (mi ModuleIdentifier) IsZero() bool {
	return mi.MainIdent == "" && mi.SubIdent == ""
}

//ModuleIdentifierFromString parses "Main:Sub". A string without a colon becomes a MainIdent with an empty SubIdent
func ModuleIdentifierFromString(str string) ModuleIdentifier {
	idx := strings.Index(str, ":")
	if idx == -1 {
		return ModuleIdentifier{MainIdent: str}
	}

	return ModuleIdentifier{
		MainIdent: str[:idx],
		SubIdent:  str[idx+1:],
	}
}
