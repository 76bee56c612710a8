package fudge

// Context is the process-wide configuration object: the type dictionary,
// the taxonomy resolver, and default settings shared by every reader and
// writer built from it. It plays the same role as org.fudgemsg.FudgeContext
// and, per the design note on cyclic dictionary/field references, is the
// single owner of the TypeDictionary — fields and codecs never hold a
// pointer back to it. A Context is safe for concurrent use once
// constructed; it is recommended, but not enforced, that callers stop
// mutating it (Dictionary().Register, Taxonomies().Register) once readers
// or writers have been built from it.
type Context struct {
	dictionary *TypeDictionary
	taxonomies *TaxonomyResolver

	// DefaultSchemaVersion is a host setting carried with the context. No
	// reader or writer in this package reads it: MessageWriter.WriteMessage
	// always takes the version as an explicit argument.
	DefaultSchemaVersion uint8
}

// NewContext returns a Context with a fully populated default type
// dictionary and an empty taxonomy resolver.
func NewContext() *Context {
	return &Context{
		dictionary: DefaultTypeDictionary(),
		taxonomies: NewTaxonomyResolver(),
	}
}

// Dictionary returns the context's type dictionary.
func (c *Context) Dictionary() *TypeDictionary { return c.dictionary }

// Taxonomies returns the context's taxonomy resolver.
func (c *Context) Taxonomies() *TaxonomyResolver { return c.taxonomies }

// NewMessage returns an empty Message built from this context's
// dictionary: the message factory mentioned in the DATA MODEL lifecycle.
func (c *Context) NewMessage() *Message {
	return NewMessage(c.dictionary)
}
