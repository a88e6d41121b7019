package model

// RequireParams returns a MissingParameterError naming every param whose present flag is
// false, or nil when all are present. Order is preserved.
func RequireParams(params ...Param) error {
	var missing []string
	for _, p := range params {
		if !p.Present {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingParameterError{Params: missing}
}

// Param pairs a wire parameter name with whether a usable value was supplied
type Param struct {
	Name    string
	Present bool
}

// StringParam is present when s is non-empty
func StringParam(name, s string) Param {
	return Param{Name: name, Present: s != ""}
}

// IntParam is present when v is non-zero
func IntParam(name string, v int64) Param {
	return Param{Name: name, Present: v != 0}
}
