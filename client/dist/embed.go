package clientdist

import _ "embed"

// ViaductJS is the browser bootstrap script.
//
// The dev server serves it at "/_viaduct/client.js" and production builds
// copy it into the output directory under the same path.
//
//go:embed viaduct.js
var ViaductJS []byte
