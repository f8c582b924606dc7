package crawlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/RecoveryAshes/CourseGrab/internal/models"
	"github.com/RecoveryAshes/CourseGrab/internal/utils"
)

// 课程信息提取正则
var (
	// courseInfoBlockPattern 匹配内联脚本数据中带originalName的课程JSON块
	courseInfoBlockPattern = regexp.MustCompile(`\{[^{}]*"originalName":"[^"]+"[^{}]*"id":"\d+"[^{}]*"href":"[^"]+"[^{}]*\}`)

	originalNamePattern = regexp.MustCompile(`"originalName":"([^"]+)"`)
	courseIDPattern     = regexp.MustCompile(`"id":"(\d+)"`)

	// envOriginPattern Canvas页面ENV变量中的站点源
	envOriginPattern = regexp.MustCompile(`"DEEP_LINKING_POST_MESSAGE_ORIGIN":"([^"]+)"`)

	coursePathPrefix = regexp.MustCompile(`^/courses/(\d+)`)
)

// LinkExtractor 离线链接提取器
// 只解析已落盘的页面HTML,从不发起网络请求
type LinkExtractor struct {
	// fallbackBase HTML中找不到任何基础URL线索时使用的站点源(scheme://host)
	// 通常由起始URL派生
	fallbackBase string
}

// NewLinkExtractor 创建链接提取器
func NewLinkExtractor(fallbackBase string) *LinkExtractor {
	return &LinkExtractor{fallbackBase: strings.TrimRight(fallbackBase, "/")}
}

// ExtractCourseLinks 从dashboard页面HTML中提取课程链接
//
// 两个来源合并去重: 锚点href中的 /courses/<数字>,以及内联脚本数据里的
// 同模式片段(dashboard卡片数据大多在JS里)。课程显示名取自
// originalName JSON块,缺失时留空。结果按路径排序
func (e *LinkExtractor) ExtractCourseLinks(markup []byte) ([]models.CourseLink, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	baseURL := e.resolveBaseURL(markup, doc)
	labels := extractCourseLabels(markup)

	ids := make(map[string]struct{})

	// 来源1: 锚点href
	for _, href := range anchorHrefs(markup) {
		if id := courseIDFromHref(href); id != "" {
			ids[id] = struct{}{}
		}
	}

	// 来源2: 全文正则(JS数据中的课程路径)
	for _, m := range models.CoursePathPattern.FindAllSubmatch(markup, -1) {
		ids[string(m[1])] = struct{}{}
	}

	links := make([]models.CourseLink, 0, len(ids))
	for id := range ids {
		path := "/courses/" + id
		link := models.CourseLink{
			ID:    id,
			Path:  path,
			URL:   baseURL + path,
			Label: labels[id],
		}
		if err := link.Validate(); err != nil {
			utils.Warnf("⚠️ 跳过无效课程链接: %v", err)
			continue
		}
		links = append(links, link)
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].Path < links[j].Path
	})

	utils.Infof("✅ 从dashboard中提取到 %d 个课程链接", len(links))
	return links, nil
}

// ExtractSectionLinks 从作业列表页HTML中提取指定折叠分组下的作业详情链接
//
// 定位链: 文本命中分组名的 button.element_toggler → 其aria-controls指向的
// 容器 → 容器内全部 a.ig-title 锚点。分组或容器缺失返回空列表而非错误,
// 该分组下没有作业是合法状态
func (e *LinkExtractor) ExtractSectionLinks(markup []byte, sectionLabel string) ([]models.AssignmentLink, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	button := findSectionButton(doc, sectionLabel)
	if button == nil {
		utils.Warnf("⚠️ 未找到标题为 '%s' 的分组按钮", sectionLabel)
		return nil, nil
	}

	ariaControls, _ := button.Attr("aria-controls")
	if ariaControls == "" {
		utils.Warnf("⚠️ 分组按钮缺少aria-controls属性")
		return nil, nil
	}

	container := findSectionContainer(doc, button, ariaControls)
	if container == nil {
		utils.Warnf("⚠️ 未找到 '%s' 对应的作业列表容器", sectionLabel)
		return nil, nil
	}

	baseURL := e.resolveBaseURL(markup, doc)

	var links []models.AssignmentLink
	container.Find("a.ig-title").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" {
			return
		}
		link := models.AssignmentLink{
			URL:       absoluteURL(href, baseURL),
			Name:      strings.TrimSpace(sel.Text()),
			SectionID: ariaControls,
		}
		if err := link.Validate(); err != nil {
			utils.Warnf("⚠️ 跳过无效作业链接: %v", err)
			return
		}
		links = append(links, link)
	})

	utils.Infof("✅ 从 '%s' 分组中提取到 %d 个作业链接", sectionLabel, len(links))
	return links, nil
}

// resolveBaseURL 确定页面的站点源(scheme://host)
// 依次尝试: <base>标签 → Canvas ENV变量 → 第一个绝对锚点 → 构造时的兜底值
func (e *LinkExtractor) resolveBaseURL(markup []byte, doc *goquery.Document) string {
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if parsed, err := url.Parse(href); err == nil && parsed.Host != "" {
			return parsed.Scheme + "://" + parsed.Host
		}
	}

	if m := envOriginPattern.FindSubmatch(markup); m != nil {
		return strings.TrimRight(string(m[1]), "/")
	}

	for _, href := range anchorHrefs(markup) {
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			if parsed, err := url.Parse(href); err == nil && parsed.Host != "" {
				return parsed.Scheme + "://" + parsed.Host
			}
		}
	}

	return e.fallbackBase
}

// anchorHrefs 遍历HTML节点树收集全部锚点的href
func anchorHrefs(markup []byte) []string {
	doc, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil
	}

	var hrefs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" {
					hrefs = append(hrefs, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hrefs
}

// extractCourseLabels 从内联脚本数据中提取课程ID到显示名的映射
func extractCourseLabels(markup []byte) map[string]string {
	labels := make(map[string]string)
	for _, block := range courseInfoBlockPattern.FindAll(markup, -1) {
		nameMatch := originalNamePattern.FindSubmatch(block)
		idMatch := courseIDPattern.FindSubmatch(block)
		if nameMatch == nil || idMatch == nil {
			continue
		}

		name := string(nameMatch[1])
		// JSON转义还原(&等)
		var decoded string
		if err := json.Unmarshal([]byte(`"`+name+`"`), &decoded); err == nil {
			name = decoded
		} else {
			name = strings.NewReplacer(`\u0026`, "&", `\/`, "/").Replace(name)
		}

		labels[string(idMatch[1])] = name
	}
	return labels
}

// courseIDFromHref 从href中提取课程ID,不匹配返回空串
func courseIDFromHref(href string) string {
	if href == "" {
		return ""
	}
	path := href
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		parsed, err := url.Parse(href)
		if err != nil {
			return ""
		}
		path = parsed.Path
	}
	if m := coursePathPrefix.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	return ""
}

// findSectionButton 查找文本包含分组名的折叠按钮(大小写不敏感)
func findSectionButton(doc *goquery.Document, sectionLabel string) *goquery.Selection {
	var found *goquery.Selection
	lowered := strings.ToLower(sectionLabel)
	doc.Find("button.element_toggler").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(strings.TrimSpace(sel.Text())), lowered) {
			found = sel
			return false
		}
		return true
	})
	return found
}

// findSectionContainer 定位分组按钮控制的作业列表容器
// 依次尝试: ID精确命中 → ID包含aria-controls的assignment-list →
// 按钮祖先assignment_group下的assignment-list
func findSectionContainer(doc *goquery.Document, button *goquery.Selection, ariaControls string) *goquery.Selection {
	if sel := doc.Find("div#" + ariaControls).First(); sel.Length() > 0 {
		return sel
	}

	var byPartialID *goquery.Selection
	doc.Find("div.assignment-list[id]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		id, _ := sel.Attr("id")
		if strings.Contains(id, ariaControls) {
			byPartialID = sel
			return false
		}
		return true
	})
	if byPartialID != nil {
		return byPartialID
	}

	if sel := button.ParentsFiltered("div.assignment_group").First().Find("div.assignment-list").First(); sel.Length() > 0 {
		return sel
	}
	return nil
}

// absoluteURL 将href解析为绝对URL
func absoluteURL(href, baseURL string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return baseURL + href
	}
	return baseURL + "/" + strings.TrimLeft(href, "/")
}
