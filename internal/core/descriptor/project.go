package descriptor

import "fmt"

// =============================================================================
// Typed Projection
// =============================================================================

// FromDocument builds the typed Descriptor from a Document that has already
// passed validation.
//
// Optional fields that are absent or null become empty values. A field whose
// container type is wrong (environment not a mapping, volumes/ports/args not a
// sequence, a non-string args element) is a *FieldError.
//
// Individual volume or port entries that are neither a string nor a mapping
// with both "host" and "container" keys are skipped; one warning per skipped
// entry is returned so the caller can surface it.
func FromDocument(doc Document) (Descriptor, []string, error) {
	var warnings []string

	image, ok := doc.String(FieldImage)
	if !ok {
		return Descriptor{}, nil, NewFieldError(FieldImage, "must be a string")
	}
	name, ok := doc.String(FieldName)
	if !ok {
		return Descriptor{}, nil, NewFieldError(FieldName, "must be a string")
	}

	d := Descriptor{
		Image:       image,
		Name:        name,
		Environment: map[string]any{},
	}

	switch env := doc[FieldEnvironment].(type) {
	case nil:
	case map[string]any:
		d.Environment = env
	default:
		return Descriptor{}, nil, NewFieldError(FieldEnvironment, "must be a mapping")
	}

	volumes, skipped, err := mounts(doc, FieldVolumes)
	if err != nil {
		return Descriptor{}, nil, err
	}
	d.Volumes = volumes
	warnings = append(warnings, skipped...)

	ports, skipped, err := mounts(doc, FieldPorts)
	if err != nil {
		return Descriptor{}, nil, err
	}
	d.Ports = ports
	warnings = append(warnings, skipped...)

	args, err := Args(doc)
	if err != nil {
		return Descriptor{}, nil, err
	}
	d.Args = args

	return d, warnings, nil
}

// Args extracts the args sequence. An absent or null field yields nil.
func Args(doc Document) ([]string, error) {
	raw := doc[FieldArgs]
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, NewFieldError(FieldArgs, "must be a sequence of strings")
	}
	args := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, NewFieldError(fmt.Sprintf("%s[%d]", FieldArgs, i), "must be a string")
		}
		args = append(args, s)
	}
	return args, nil
}

func mounts(doc Document, field string) ([]Mount, []string, error) {
	raw := doc[field]
	if raw == nil {
		return nil, nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, nil, NewFieldError(field, "must be a sequence")
	}

	var (
		out      []Mount
		warnings []string
	)
	for i, item := range items {
		switch entry := item.(type) {
		case string:
			out = append(out, Mount{Raw: entry})
		case map[string]any:
			host, hasHost := entry[KeyHost]
			container, hasContainer := entry[KeyContainer]
			if !hasHost || !hasContainer || host == nil || container == nil {
				warnings = append(warnings, fmt.Sprintf("%s[%d] skipped: mapping needs non-null %q and %q", field, i, KeyHost, KeyContainer))
				continue
			}
			out = append(out, Mount{Host: Text(host), Container: Text(container), IsPair: true})
		default:
			warnings = append(warnings, fmt.Sprintf("%s[%d] skipped: expected a string or a {%s, %s} mapping", field, i, KeyHost, KeyContainer))
		}
	}
	return out, warnings, nil
}
