package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

var hclSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: globalSectionName},
		{Type: "module", LabelNames: []string{"name"}},
	},
}

// parseHCL reads a file shaped like
//
//	mirror {
//	  screen_width = 1200
//	}
//	module "clock" {
//	  source = "clock"
//	}
func parseHCL(path string) (*document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, configCause(diags, "path", path)
	}
	content, diags := file.Body.Content(hclSchema)
	if diags.HasErrors() {
		return nil, configCause(diags, "path", path)
	}

	doc := &document{}
	for _, block := range content.Blocks {
		name := block.Type
		if len(block.Labels) > 0 {
			name = block.Labels[0]
		}
		values, err := hclAttributes(block.Body, name)
		if err != nil {
			return nil, err
		}
		switch block.Type {
		case globalSectionName:
			if doc.global != nil {
				return nil, configError("duplicate section", "section", globalSectionName, "range", block.DefRange.String())
			}
			doc.global = values
		case "module":
			doc.modules = append(doc.modules, section{name: name, values: values})
		}
	}
	return doc, nil
}

func hclAttributes(body hcl.Body, section string) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, configCause(diags, "section", section)
	}
	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, configCause(diags, "section", section, "field", name)
		}
		v, err := ctyToNative(val)
		if err != nil {
			return nil, configCause(err, "section", section, "field", name)
		}
		out[name] = v
	}
	return out, nil
}

// ctyToNative maps HCL values onto the scalar types modules expect.
// Whole numbers become int.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return "", nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		var i int
		if err := gocty.FromCtyValue(v, &i); err == nil {
			return i, nil
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, el := it.Element()
			n, err := ctyToNative(el)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			k, el := it.Element()
			n, err := ctyToNative(el)
			if err != nil {
				return nil, fmt.Errorf("in %q: %w", k.AsString(), err)
			}
			out[k.AsString()] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value of type %s", ty.FriendlyName())
}
