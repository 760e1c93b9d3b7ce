// Package tools defines the fixed set of search and analysis tools, their argument records and input schemas, argument validation, the builder turning validated arguments into API requests, and the capability listing.
package tools
