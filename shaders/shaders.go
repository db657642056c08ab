package shaders

import (
	_ "embed"
)

// LitWGSL is the forward lit pass bound through the second contract revision.
//
//go:embed lit.wgsl
var LitWGSL string

// BasicWGSL is the normal-shaded pass bound through the first contract revision.
//
//go:embed basic.wgsl
var BasicWGSL string
