// Package build produces a deployable static site from a Viaduct project.
//
// A build renders the HTML shell to index.html, copies public assets into
// the output directory under content-hashed names, writes the asset
// manifest, and bundles the embedded browser bootstrap script. The result
// is a directory "viaduct deploy" can publish as-is.
package build
