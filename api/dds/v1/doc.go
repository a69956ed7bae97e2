// Package ddsv1 contains the XML message types of the NSI Document
// Distribution Service API, namespace
// http://schemas.ogf.org/nsi/2014/02/discovery/types.
//
// The types carry encoding/xml struct tags for their content only; the
// root element name of a document is supplied by the codec's bindings
// (see internal/xmlcodec), so one type may appear both as a root element
// and nested inside another message.
package ddsv1
