package cli

import "github.com/calvinalkan/nmsq/internal/nmsdb"

// kindFlag is a pflag.Value that only accepts recipe kinds, so a bad
// --kind fails during flag parsing.
type kindFlag struct {
	kind nmsdb.Kind
}

func (k *kindFlag) String() string { return string(k.kind) }

func (k *kindFlag) Set(s string) error {
	kind, err := nmsdb.ParseKind(s)
	if err != nil {
		return err
	}

	k.kind = kind

	return nil
}

func (*kindFlag) Type() string { return "kind" }
