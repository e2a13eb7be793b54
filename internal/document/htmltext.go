package document

import (
	"html"
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// RenderText 将文本片段转换为可安全嵌入的HTML
// 处理顺序不可调换：先整体转义防止原文中的标签被解释，
// 再恢复被转义的字面换行标记<br>（这是对转义的唯一例外），
// 最后按Markdown（含表格语法）转换为HTML
func RenderText(raw string) template.HTML {
	escaped := html.EscapeString(raw)
	escaped = strings.ReplaceAll(escaped, "&lt;br&gt;", "<br>")

	// 解析器有内部状态，不能跨调用复用
	extensions := parser.CommonExtensions | parser.Tables
	mdParser := parser.NewWithExtensions(extensions)

	htmlFlags := mdhtml.CommonFlags
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: htmlFlags})

	out := markdown.ToHTML([]byte(escaped), mdParser, renderer)
	return template.HTML(out)
}
