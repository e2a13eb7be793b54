package preview

import (
	_ "embed"
	"fmt"
	"html/template"
	"os"
)

// 内置的默认预览模板，可通过--template_path用外部文件覆盖
//
//go:embed template.html
var defaultTemplate string

// LoadTemplate 加载输出模板
// path为空时使用内置模板；解析后的模板是只读的，
// 可以被所有worker并发执行
func LoadTemplate(path string) (*template.Template, error) {
	content := defaultTemplate
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template file %s: %v", path, err)
		}
		content = string(data)
	}

	tmpl, err := template.New("preview").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %v", err)
	}
	return tmpl, nil
}
