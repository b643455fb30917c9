package domain

// DomainDesc identifies a domain by the modality it belongs to (Base) and the
// representation used for it (Kind). Two descriptors are equal when both
// fields are equal, so DomainDesc can be used as a map key.
type DomainDesc struct {
	Base string
	Kind string
}

// ID returns the identifier used in records and group keys.
func (d DomainDesc) ID() string { return d.Kind }

func (d DomainDesc) String() string {
	if d.Base == d.Kind {
		return d.Kind
	}
	return d.Base + "/" + d.Kind
}

// Built-in domain types.
var (
	// VisualDomain uses the raw images.
	VisualDomain = DomainDesc{Base: "v", Kind: "v"}
	// VisualLatentsDomain uses latent vectors pre-extracted from the visual VAE.
	VisualLatentsDomain = DomainDesc{Base: "v", Kind: "v_latents"}
	// AttributesDomain uses the shape attribute table.
	AttributesDomain = DomainDesc{Base: "attr", Kind: "attr"}
	// RawTextDomain uses the captions as strings.
	RawTextDomain = DomainDesc{Base: "t", Kind: "raw_text"}
	// TextDomain uses pre-computed caption embeddings.
	TextDomain = DomainDesc{Base: "t", Kind: "t"}
)

// BuiltinTypes lists the built-in descriptors by identifier.
func BuiltinTypes() map[string]DomainDesc {
	return map[string]DomainDesc{
		VisualDomain.ID():        VisualDomain,
		VisualLatentsDomain.ID(): VisualLatentsDomain,
		AttributesDomain.ID():    AttributesDomain,
		RawTextDomain.ID():       RawTextDomain,
		TextDomain.ID():          TextDomain,
	}
}

// Splits accepted by every domain.
const (
	SplitTrain = "train"
	SplitVal   = "val"
	SplitTest  = "test"
)

// ValidSplit reports whether split is one of train, val or test.
func ValidSplit(split string) bool {
	switch split {
	case SplitTrain, SplitVal, SplitTest:
		return true
	}
	return false
}
