package component

import (
	"bytes"
	"fmt"

	"icalcodec/internal/contentline"
	"icalcodec/internal/value"
)

const crlf = "\r\n"

// SerializeOptions configure Serialize.
type SerializeOptions struct {
	Value value.Options
	// FoldWidth defaults to contentline.DefaultWidth when zero.
	FoldWidth int
	// Sorted orders non-canonical properties by name instead of insertion.
	Sorted bool
}

// Serialize writes the components one after another. Every line, the last
// END included, is terminated by CRLF.
func Serialize(comps []*Component, opts SerializeOptions) ([]byte, error) {
	var buf bytes.Buffer
	for _, c := range comps {
		if err := c.write(&buf, opts); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Serialize writes c and its children.
func (c *Component) Serialize(opts SerializeOptions) ([]byte, error) {
	return Serialize([]*Component{c}, opts)
}

func (c *Component) write(buf *bytes.Buffer, opts SerializeOptions) error {
	width := opts.FoldWidth
	if width == 0 {
		width = contentline.DefaultWidth
	}
	emit := func(line string) {
		buf.WriteString(contentline.Fold(line, width))
		buf.WriteString(crlf)
	}

	emit("BEGIN:" + c.Name)
	for _, p := range c.PropertyItems(opts.Sorted) {
		line, err := p.render(opts.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
		emit(line)
	}
	for _, ch := range c.Children {
		if err := ch.write(buf, opts); err != nil {
			return err
		}
	}
	emit("END:" + c.Name)
	return nil
}

func (p *Property) render(opts value.Options) (string, error) {
	if b, ok := p.Value.(value.Broken); ok && b.Line {
		return p.Name + b.Raw, nil
	}
	raw, params, err := value.Encode(p.Name, p.Value, p.Params, opts)
	if err != nil {
		return "", err
	}
	return contentline.Render(p.Name, params, raw), nil
}
