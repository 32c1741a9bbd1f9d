// Package client performs blocking HTTP/1.1 exchanges over fresh
// connections. It ties together the transport dialer, the wire
// encoder and head parser, the transfer codings and the content
// pipeline into a single Send call.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112
package client
