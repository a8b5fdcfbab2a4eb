package dataparams

// View is the name to value projection served to readers.
type View map[string]any

func resort(data map[string]Param) View {
	v := make(View, len(data))
	for name, p := range data {
		v[name] = p.Value()
	}
	return v
}
