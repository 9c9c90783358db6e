package masking

// Masker is a code-based masker with structural awareness that plain regex
// patterns cannot provide, e.g. masking Kubernetes Secrets while leaving
// ConfigMaps alone.
type Masker interface {
	// Name is the identifier used to enable this masker; it must match the
	// key in config.GetBuiltinConfig().CodeMaskers.
	Name() string

	// AppliesTo is a cheap pre-filter (substring checks, no parsing) that
	// decides whether Mask is worth calling on this data.
	AppliesTo(data string) bool

	// Mask returns the masked data. On parse or processing errors it must
	// return the input unchanged rather than fail.
	Mask(data string) string
}
