// Package xmlcodec converts between XML documents and the typed DDS
// message structs.
//
// A Context is the registry of root element bindings (element name to Go
// type). Building one validates every bound type, so it is created once
// per process through Lazy and shared read-only afterwards; Default
// returns the context for the NSI-DDS schema.
//
// A Codec decodes and encodes with a Context:
//
//	c, err := xmlcodec.NewDefault(log)
//	list, err := xmlcodec.DecodeFile[ddsv1.NotificationListType](c, "notifications.xml")
//	text, err := c.EncodeToString(list)
//
// DecodeRequest first positions the stream at the XML declaration with
// pkg/prolog, for transports that deliver stray bytes ahead of the
// document.
//
// All failures are domain errors: ErrIO, ErrDecode, ErrNoXMLStart,
// ErrEncode, ErrSchemaInit, or a *TypeMismatchError when the document is
// well formed but bound to a different type than the one requested.
package xmlcodec
