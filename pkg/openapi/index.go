package openapi

import (
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/stripegen/pkg/generrors"
)

// docIndex is built from a yaml.v3 node pass over the raw document. It keeps
// what the typed document loses: the order of object properties, and every
// $ref site with its JSON pointer.
type docIndex struct {
	raw        any
	properties map[string][]string
	refs       []refSite
}

type refSite struct {
	pointer string
	ref     string
}

func buildIndex(data []byte) (*docIndex, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, generrors.NewLoadError(generrors.LoadParse, "", "invalid document", err)
	}
	idx := &docIndex{properties: make(map[string][]string)}
	if err := root.Decode(&idx.raw); err != nil {
		return nil, generrors.NewLoadError(generrors.LoadParse, "", "invalid document", err)
	}
	idx.walk(&root, "", "")
	return idx, nil
}

func (idx *docIndex) walk(n *yaml.Node, ptr, key string) {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			idx.walk(c, ptr, key)
		}
	case yaml.MappingNode:
		if key == "properties" {
			keys := make([]string, 0, len(n.Content)/2)
			for i := 0; i+1 < len(n.Content); i += 2 {
				keys = append(keys, n.Content[i].Value)
			}
			idx.properties[ptr] = keys
		}
		inMapping := key == "mapping" && strings.HasSuffix(ptr, "/discriminator/mapping")
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i].Value, n.Content[i+1]
			child := ptr + "/" + jsonpointer.Escape(k)
			if (k == "$ref" || inMapping) && v.Kind == yaml.ScalarNode {
				ref := v.Value
				if inMapping && !strings.HasPrefix(ref, "#") {
					ref = componentPrefix + ref
				}
				idx.refs = append(idx.refs, refSite{pointer: child, ref: ref})
				continue
			}
			idx.walk(v, child, k)
		}
	case yaml.SequenceNode:
		for i, c := range n.Content {
			idx.walk(c, ptr+"/"+strconv.Itoa(i), "")
		}
	}
}

// checkRefs resolves every recorded $ref against the raw document. Only
// local references are accepted; the generator never fetches.
func (idx *docIndex) checkRefs() error {
	for _, site := range idx.refs {
		if !strings.HasPrefix(site.ref, "#") {
			return generrors.NewLoadError(generrors.LoadUnresolvedRef, site.pointer, "external reference "+site.ref, nil)
		}
		ptr, err := jsonpointer.New(strings.TrimPrefix(site.ref, "#"))
		if err != nil {
			return generrors.NewLoadError(generrors.LoadUnresolvedRef, site.pointer, "malformed reference "+site.ref, err)
		}
		if _, _, err := ptr.Get(idx.raw); err != nil {
			return generrors.NewLoadError(generrors.LoadUnresolvedRef, site.pointer, "unresolved reference "+site.ref, err)
		}
	}
	return nil
}

// propertyOrder returns the document order of the properties of the schema
// at ptr, or nil when unknown.
func (idx *docIndex) propertyOrder(ptr string) []string {
	return idx.properties[ptr+"/properties"]
}
