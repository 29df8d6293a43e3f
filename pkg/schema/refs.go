package schema

import (
	"sync"

	"github.com/aretw0/canvas/pkg/domain"
)

// Well-known schema references for object props.
const (
	RefImage = "json-schema-definitions://canvas.module/image"
	RefVideo = "json-schema-definitions://canvas.module/video"
)

// ObjectSchema is the shape behind a $ref: its properties and which of them are required.
type ObjectSchema struct {
	Required   []string
	Properties domain.Ordered[*domain.PropSchema]
}

var (
	refsMu sync.RWMutex
	refs   = map[string]*ObjectSchema{}
)

func init() {
	RegisterRef(RefImage, NewObjectSchema([]string{"src"},
		domain.Pair[*domain.PropSchema]{Key: "src", Value: &domain.PropSchema{Type: "string", Format: "uri-reference"}},
		domain.Pair[*domain.PropSchema]{Key: "alt", Value: &domain.PropSchema{Type: "string"}},
		domain.Pair[*domain.PropSchema]{Key: "width", Value: &domain.PropSchema{Type: "integer"}},
		domain.Pair[*domain.PropSchema]{Key: "height", Value: &domain.PropSchema{Type: "integer"}},
	))
	RegisterRef(RefVideo, NewObjectSchema([]string{"src"},
		domain.Pair[*domain.PropSchema]{Key: "src", Value: &domain.PropSchema{Type: "string", Format: "uri-reference"}},
		domain.Pair[*domain.PropSchema]{Key: "poster", Value: &domain.PropSchema{Type: "string", Format: "uri-reference"}},
	))
}

// NewObjectSchema builds an ObjectSchema from ordered properties.
func NewObjectSchema(required []string, props ...domain.Pair[*domain.PropSchema]) *ObjectSchema {
	return &ObjectSchema{Required: required, Properties: domain.NewOrdered(props...)}
}

// RegisterRef makes an object shape available under ref, replacing any previous one.
func RegisterRef(ref string, obj *ObjectSchema) {
	refsMu.Lock()
	defer refsMu.Unlock()
	refs[ref] = obj
}

// LookupRef returns the object shape registered under ref.
func LookupRef(ref string) (*ObjectSchema, bool) {
	refsMu.RLock()
	defer refsMu.RUnlock()
	obj, ok := refs[ref]
	return obj, ok
}
