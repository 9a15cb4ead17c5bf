package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Route Errors (R001-R099)
	// ============================================

	"R001": {
		Category: CategoryRoute,
		Message:  "Invalid route record",
		Detail:   "The route record could not be compiled into the route tree.",
		DocURL:   "https://viaduct.dev/docs/errors/R001",
	},
	"R002": {
		Category: CategoryRoute,
		Message:  "Empty parameter name",
		Detail:   "A dynamic segment needs a name after the colon, e.g. :id or :rest*.",
		DocURL:   "https://viaduct.dev/docs/errors/R002",
	},
	"R003": {
		Category: CategoryRoute,
		Message:  "Catch-all segment must be last",
		Detail:   "A :name* segment consumes the remainder of the path, so nothing can follow it inside the same record.",
		DocURL:   "https://viaduct.dev/docs/errors/R003",
	},
	"R004": {
		Category: CategoryRoute,
		Message:  "Malformed path",
		Detail:   "The path could not be parsed. Paths must not contain backslashes or control bytes.",
		DocURL:   "https://viaduct.dev/docs/errors/R004",
	},
	"R005": {
		Category: CategoryRoute,
		Message:  "Lazy component load failed",
		Detail:   "The deferred component loader returned an error. The next navigation to this route retries the load.",
		DocURL:   "https://viaduct.dev/docs/errors/R005",
	},
	"R006": {
		Category: CategoryRoute,
		Message:  "Unknown route id",
		Detail:   "No compiled route carries this id. Route ids are derived from the route's full pattern.",
		DocURL:   "https://viaduct.dev/docs/errors/R006",
	},

	// ============================================
	// Navigation Errors (N001-N099)
	// ============================================

	"N001": {
		Category: CategoryNavigation,
		Message:  "Middleware failed",
		Detail:   "A navigation middleware returned an error. The navigation did not complete.",
		DocURL:   "https://viaduct.dev/docs/errors/N001",
	},
	"N002": {
		Category: CategoryNavigation,
		Message:  "Metadata collection failed",
		Detail:   "A route metadata function returned an error while resolving the match.",
		DocURL:   "https://viaduct.dev/docs/errors/N002",
	},
	"N003": {
		Category: CategoryNavigation,
		Message:  "Router is missing a collaborator",
		Detail:   "The router needs a document and a history stack. Pass both in router.Options.",
		DocURL:   "https://viaduct.dev/docs/errors/N003",
	},

	// ============================================
	// Config Errors (C001-C099)
	// ============================================

	"C001": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No viaduct.json was found in the project directory.",
		DocURL:   "https://viaduct.dev/docs/errors/C001",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "viaduct.json exists but could not be parsed as JSON.",
		DocURL:   "https://viaduct.dev/docs/errors/C002",
	},
	"C003": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A config field has a value outside its allowed range.",
		DocURL:   "https://viaduct.dev/docs/errors/C003",
	},

	// ============================================
	// Build Errors (B001-B099)
	// ============================================

	"B001": {
		Category: CategoryBuild,
		Message:  "Build output failed",
		Detail:   "A file could not be written to the build output directory.",
		DocURL:   "https://viaduct.dev/docs/errors/B001",
	},
	"B002": {
		Category: CategoryBuild,
		Message:  "Build input missing",
		Detail:   "A file or directory the build reads from does not exist.",
		DocURL:   "https://viaduct.dev/docs/errors/B002",
	},

	// ============================================
	// Deploy Errors (D001-D099)
	// ============================================

	"D001": {
		Category: CategoryDeploy,
		Message:  "Deploy upload failed",
		Detail:   "An object could not be uploaded to the target bucket.",
		DocURL:   "https://viaduct.dev/docs/errors/D001",
	},
	"D002": {
		Category: CategoryDeploy,
		Message:  "Deploy target not configured",
		Detail:   "Deploying needs a bucket name in viaduct.json's deploy section or on the command line.",
		DocURL:   "https://viaduct.dev/docs/errors/D002",
	},
}

// Register adds an error template at runtime. Registered codes override
// built-ins with the same code.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
