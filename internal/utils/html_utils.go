package utils

import (
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const imageFallback = "/static/img/image-missing.svg"

// EnhanceHTMLContent 为渲染后的正文中的图片和链接补充属性
func EnhanceHTMLContent(htmlStr string) template.HTML {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(htmlStr)
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("loading", "lazy")
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("onerror", "this.onerror=null; this.src='"+imageFallback+"'")
		s.AddClass("img-fluid")
	})

	// 站外链接不传递权重
	doc.Find("a[href^='http']").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("rel", "nofollow noopener noreferrer")
	})

	doc.Find("table").AddClass("table")

	// goquery renders full document tags if missing, we just want the body content
	html, _ := doc.Find("body").Html()
	if html == "" {
		html, _ = doc.Html()
	}

	return template.HTML(html)
}

// PlainText 去掉 HTML 标签，返回纯文本
func PlainText(htmlStr string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return htmlStr
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
