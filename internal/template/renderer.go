package template

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/ghaggin/pastemate/internal/model"
)

//go:embed tmpl/*.html
var files embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{
		"page.html",
		"signin.html",
		"register.html",
		"paste_submit.html",
		"paste_list.html",
		"paste_view.html",
		"paste_edit.html",
	} {
		pages[name] = template.Must(template.ParseFS(files, "tmpl/base.html", "tmpl/password.html", "tmpl/"+name))
	}
}

type Data struct {
	PageTitle string
	Path      string
	UserName  string
	Protected bool
	Redirect  string
	Error     string

	Paste        *model.Paste
	IsOwner      bool
	NeedPassword bool

	Pastes   []model.Paste
	PrevPage int
	NextPage int
	LastPage int
}

// Render writes the named page into w. Nothing is written when execution
// fails, so the caller can still send an error status.
func Render(w http.ResponseWriter, status int, tmpl string, td *Data) error {
	t, ok := pages[tmpl]
	if !ok {
		return errUnknownTemplate(tmpl)
	}

	buf := &bytes.Buffer{}

	err := t.ExecuteTemplate(buf, "base", td)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

type errUnknownTemplate string

func (e errUnknownTemplate) Error() string {
	return "unknown template " + string(e)
}
