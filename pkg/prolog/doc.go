// Package prolog locates the start of an XML document inside a byte stream.
//
// Some transports deliver request bodies with extraneous bytes in front of
// the XML declaration, for example the length line of the first chunk of a
// chunked POST. Seek scans forward for the "<?" marker and returns a reader
// positioned exactly on the '<', so a standards-compliant decoder can
// consume the remainder:
//
//	r, err := prolog.Seek(req.Body)
//	if err != nil {
//		return err // prolog.ErrNoXMLStart or an I/O error
//	}
//	dec := xml.NewDecoder(r)
//
// Scanning is bounded by a fixed Lookahead buffer; the whole document is
// never buffered.
package prolog
