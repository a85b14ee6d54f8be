package main

import (
	"html/template"
	"net/url"
	"path/filepath"
	"time"

	"blogicum/internal/policy"
	"blogicum/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// views maps the names handlers render to files under views/.
var views = []string{
	"blog/index.html",
	"blog/category.html",
	"blog/profile.html",
	"blog/detail.html",
	"blog/create.html",
	"blog/comment.html",
	"blog/user.html",
	"registration/login.html",
	"registration/registration_form.html",
	"pages/about.html",
	"pages/rules.html",
	"pages/404.html",
	"pages/500.html",
}

func loadTemplates(templatesDir, siteName string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files: layout first, it is the entry template
	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(includes)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	funcMap := templateFuncs(siteName)
	for _, name := range views {
		r.AddFromFilesFuncs(name, funcMap, assemble(filepath.Join(templatesDir, "views", name))...)
	}
	return r
}

func templateFuncs(siteName string) template.FuncMap {
	return template.FuncMap{
		"siteName": func() string {
			return siteName
		},
		// 表单字段错误，Errors 缺省时为空
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
		"markdown": utils.RenderMarkdown,
		"excerpt":  utils.Excerpt,
		"date": func(t time.Time) string {
			return t.UTC().Format("2 January 2006, 15:04")
		},
		"postURL": policy.PostDetailPath,
		"profileURL": func(username string) string {
			return "/profile/" + url.PathEscape(username) + "/"
		},
		"categoryURL": func(slug string) string {
			return "/category/" + url.PathEscape(slug) + "/"
		},
		"mediaURL": func(rel string) string {
			if rel == "" {
				return ""
			}
			return "/media/" + rel
		},
	}
}
