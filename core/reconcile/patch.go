package reconcile

import "fmt"

// PatchType names an in-place mutation a strategy knows how to apply.
type PatchType string

const (
	PatchOpacity          PatchType = "opacity"
	PatchVisibility       PatchType = "visibility"
	PatchShader           PatchType = "shader"
	PatchFilterOperator   PatchType = "filter_operator"
	PatchMappingFlags     PatchType = "mapping_flags"
	PatchMappingRange     PatchType = "mapping_range"
	PatchMappingUndefined PatchType = "mapping_undefined"
	PatchDisplay          PatchType = "display"
)

// Patch is a targeted in-place update of the rendered resource.
type Patch struct {
	Type PatchType
	// Target optionally names the sub-element the patch applies to, e.g. a mapping key.
	Target string
	// Value is the new value of the watched field.
	Value any
}

func (p Patch) String() string {
	if p.Target == "" {
		return string(p.Type)
	}
	return fmt.Sprintf("%s(%s)", p.Type, p.Target)
}

// Opacity returns an opacity patch.
func Opacity(v float64) Patch { return Patch{Type: PatchOpacity, Value: v} }

// Visibility returns a visibility patch.
func Visibility(v bool) Patch { return Patch{Type: PatchVisibility, Value: v} }
