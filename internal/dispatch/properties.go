package dispatch

import "github.com/srg/bluem/internal/objtree"

func propertyMembers() []Member {
	return []Member{
		{
			Name:    "Get",
			In:      []Arg{{Name: "interface", Kind: KindString}, {Name: "name", Kind: KindString}},
			Out:     []Arg{{Name: "value", Kind: KindVariant}},
			Handler: getProperty,
		},
		{
			Name:    "GetAll",
			In:      []Arg{{Name: "interface", Kind: KindString}},
			Out:     []Arg{{Name: "properties", Kind: KindPropertyMap}},
			Handler: getAllProperties,
		},
	}
}

func getProperty(c *Call) ([]any, error) {
	obj, err := c.Tx.Get(c.Path)
	if err != nil {
		return nil, err
	}
	v, err := obj.Property(c.Args[0].(string), c.Args[1].(string))
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

func getAllProperties(c *Call) ([]any, error) {
	obj, err := c.Tx.Get(c.Path)
	if err != nil {
		return nil, err
	}
	props, err := obj.Properties(c.Args[0].(string))
	if err != nil {
		return nil, err
	}
	return []any{props}, nil
}

// PropertyMap converts a GetAll result into a plain map
func PropertyMap(props []objtree.Property) map[string]any {
	return objtree.Interface{Properties: props}.Map()
}
