package descriptor

// =============================================================================
// Field Names
// =============================================================================

// Recognized top-level descriptor fields. Anything else is ignored.
const (
	FieldImage       = "image"
	FieldName        = "name"
	FieldEnvironment = "environment"
	FieldVolumes     = "volumes"
	FieldPorts       = "ports"
	FieldArgs        = "args"
)

// Keys of a structured volume or port entry.
const (
	KeyHost      = "host"
	KeyContainer = "container"
)

// =============================================================================
// Document
// =============================================================================

// Document is a decoded, untrusted descriptor: a tree of maps, slices,
// strings, numbers, booleans and nil. Mappings are always map[string]any.
type Document map[string]any

// String returns the string value of a top-level field and whether the field
// holds a string at all.
func (d Document) String(field string) (string, bool) {
	v, ok := d[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// =============================================================================
// Descriptor
// =============================================================================

// Descriptor is the typed projection of a validated Document.
// It is built by FromDocument and never mutated afterwards.
type Descriptor struct {
	Image       string
	Name        string
	Environment map[string]any
	Volumes     []Mount
	Ports       []Mount
	Args        []string
}

// Mount is a volume or port entry: either a raw runtime string passed through
// unchanged, or a host/container pair joined with ":".
type Mount struct {
	Raw       string
	Host      string
	Container string
	IsPair    bool
}

// Spec returns the single runtime token for the mount.
//
// Example:
//
//	Mount{Raw: "/data:/data:ro"}.Spec()                          // "/data:/data:ro"
//	Mount{Host: "8080", Container: "80", IsPair: true}.Spec()    // "8080:80"
func (m Mount) Spec() string {
	if m.IsPair {
		return m.Host + ":" + m.Container
	}
	return m.Raw
}
