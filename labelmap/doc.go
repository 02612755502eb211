// Package labelmap parses class label maps from HCL files and resolves class
// names (or display names) to numeric class ids for the decoder.
//
// A label map file is a sequence of item blocks:
//
//	item {
//	  name         = "person"
//	  id           = 1
//	  display_name = "Person"
//	}
package labelmap
