// Package recordio reads and writes record files: flat files holding a
// sequence of length-delimited, checksummed records. Each record is framed
// as a uvarint payload length, the payload bytes, and a CRC-32C checksum of
// the payload. The payload is an example in MUS wire format, but the framing
// itself is payload-agnostic.
package recordio
