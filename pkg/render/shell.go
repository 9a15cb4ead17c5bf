package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/viaduct-dev/viaduct/pkg/vdom"
)

// DefaultClientScript is the URL the shell loads the client runtime from
// when Shell.ClientScript is empty.
const DefaultClientScript = "/_viaduct/client.js"

// Shell describes the HTML document wrapped around a rendered application.
type Shell struct {
	// Body is the application root rendered inside <body>.
	Body *vdom.VNode

	// Title sets the document title.
	Title string

	// Lang sets the lang attribute on <html>. Defaults to "en".
	Lang string

	// Meta tags emitted in <head>.
	Meta []MetaTag

	// Links emitted in <head>.
	Links []LinkTag

	// Scripts emitted at the end of <head>.
	Scripts []ScriptTag

	// StyleSheets are stylesheet URLs linked in <head>.
	StyleSheets []string

	// Styles are inline CSS blocks emitted in <head>. The contents are
	// written verbatim and must come from trusted sources.
	Styles []string

	// ClientScript is the URL of the client runtime loaded at the end of
	// <body>. Defaults to DefaultClientScript.
	ClientScript string

	// BootConfig is serialized to JSON and exposed as window.__VIADUCT__
	// before the client runtime loads.
	BootConfig map[string]any
}

// MetaTag describes a <meta> element. Exactly one of Charset, Property,
// HTTPEquiv or Name selects the tag form.
type MetaTag struct {
	Name      string
	Content   string
	Property  string
	HTTPEquiv string
	Charset   string
}

// LinkTag describes a <link> element.
type LinkTag struct {
	Rel         string
	Href        string
	Type        string
	Sizes       string
	CrossOrigin string
	Media       string
}

// ScriptTag describes a <script> element in <head>. When Inline is set the
// contents are written verbatim and Src is ignored.
type ScriptTag struct {
	Src    string
	Type   string
	Defer  bool
	Async  bool
	Module bool
	Inline string
}

// RenderShell writes a complete HTML document around the shell's body.
func RenderShell(w io.Writer, shell Shell) error {
	lang := shell.Lang
	if lang == "" {
		lang = "en"
	}
	clientScript := shell.ClientScript
	if clientScript == "" {
		clientScript = DefaultClientScript
	}

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"%s\">\n", escapeAttr(lang)); err != nil {
		return err
	}

	if err := renderHead(w, shell); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "<body>\n"); err != nil {
		return err
	}

	if shell.Body != nil {
		renderer := NewRenderer(RendererConfig{})
		if err := renderer.RenderToWriter(w, shell.Body); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	if err := renderBootScript(w, shell.BootConfig); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "<script src=\"%s\" defer></script>\n", escapeAttr(clientScript)); err != nil {
		return err
	}

	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

func renderHead(w io.Writer, shell Shell) error {
	if _, err := io.WriteString(w, "<head>\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "<meta charset=\"utf-8\">\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n"); err != nil {
		return err
	}

	if shell.Title != "" {
		if _, err := fmt.Fprintf(w, "<title>%s</title>\n", escapeHTML(shell.Title)); err != nil {
			return err
		}
	}

	for _, meta := range shell.Meta {
		if err := renderMetaTag(w, meta); err != nil {
			return err
		}
	}

	for _, link := range shell.Links {
		if err := renderLinkTag(w, link); err != nil {
			return err
		}
	}

	for _, href := range shell.StyleSheets {
		if _, err := fmt.Fprintf(w, "<link rel=\"stylesheet\" href=\"%s\">\n", escapeAttr(href)); err != nil {
			return err
		}
	}

	for _, css := range shell.Styles {
		if _, err := fmt.Fprintf(w, "<style>%s</style>\n", css); err != nil {
			return err
		}
	}

	for _, script := range shell.Scripts {
		if err := renderScriptTag(w, script); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</head>\n")
	return err
}

func renderMetaTag(w io.Writer, meta MetaTag) error {
	switch {
	case meta.Charset != "":
		_, err := fmt.Fprintf(w, "<meta charset=\"%s\">\n", escapeAttr(meta.Charset))
		return err
	case meta.Property != "":
		_, err := fmt.Fprintf(w, "<meta property=\"%s\" content=\"%s\">\n",
			escapeAttr(meta.Property), escapeAttr(meta.Content))
		return err
	case meta.HTTPEquiv != "":
		_, err := fmt.Fprintf(w, "<meta http-equiv=\"%s\" content=\"%s\">\n",
			escapeAttr(meta.HTTPEquiv), escapeAttr(meta.Content))
		return err
	default:
		_, err := fmt.Fprintf(w, "<meta name=\"%s\" content=\"%s\">\n",
			escapeAttr(meta.Name), escapeAttr(meta.Content))
		return err
	}
}

func renderLinkTag(w io.Writer, link LinkTag) error {
	if _, err := fmt.Fprintf(w, "<link rel=\"%s\" href=\"%s\"",
		escapeAttr(link.Rel), escapeAttr(link.Href)); err != nil {
		return err
	}
	if link.Type != "" {
		if _, err := fmt.Fprintf(w, " type=\"%s\"", escapeAttr(link.Type)); err != nil {
			return err
		}
	}
	if link.Sizes != "" {
		if _, err := fmt.Fprintf(w, " sizes=\"%s\"", escapeAttr(link.Sizes)); err != nil {
			return err
		}
	}
	if link.CrossOrigin != "" {
		if _, err := fmt.Fprintf(w, " crossorigin=\"%s\"", escapeAttr(link.CrossOrigin)); err != nil {
			return err
		}
	}
	if link.Media != "" {
		if _, err := fmt.Fprintf(w, " media=\"%s\"", escapeAttr(link.Media)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">\n")
	return err
}

func renderScriptTag(w io.Writer, script ScriptTag) error {
	if script.Inline != "" {
		if script.Type != "" {
			_, err := fmt.Fprintf(w, "<script type=\"%s\">%s</script>\n",
				escapeAttr(script.Type), script.Inline)
			return err
		}
		_, err := fmt.Fprintf(w, "<script>%s</script>\n", script.Inline)
		return err
	}

	if _, err := fmt.Fprintf(w, "<script src=\"%s\"", escapeAttr(script.Src)); err != nil {
		return err
	}
	if script.Module {
		if _, err := io.WriteString(w, ` type="module"`); err != nil {
			return err
		}
	} else if script.Type != "" {
		if _, err := fmt.Fprintf(w, " type=\"%s\"", escapeAttr(script.Type)); err != nil {
			return err
		}
	}
	if script.Defer {
		if _, err := io.WriteString(w, " defer"); err != nil {
			return err
		}
	}
	if script.Async {
		if _, err := io.WriteString(w, " async"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "></script>\n")
	return err
}

// renderBootScript exposes the boot configuration as window.__VIADUCT__.
// json.Marshal escapes <, > and & so the payload stays inside the script
// element.
func renderBootScript(w io.Writer, config map[string]any) error {
	if len(config) == 0 {
		return nil
	}
	payload, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal boot config: %w", err)
	}
	_, err = fmt.Fprintf(w, "<script>window.__VIADUCT__ = %s;</script>\n", payload)
	return err
}
