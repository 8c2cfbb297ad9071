package generation

import (
	"fmt"
	"strings"

	"github.com/notecraft/notecraft/internal/models"
)

const recognitionPrompt = `你是一个专业的小红书电商专家和商品识别助手。
请分析这张图片，识别其中的主要商品，并输出其详细参数。
如果是全品类商品，请尽可能精确。

请严格按照以下 JSON 格式输出，不要包含任何 Markdown 代码块标签或其他多余文字：
{
  "product_category": "商品二级类目",
  "brand": "品牌名称",
  "model": "具体型号",
  "estimated_price_range": "预估价格区间",
  "key_features": ["卖点1", "卖点2", "卖点3"],
  "target_audience": "受众群体描述",
  "tone_keywords": ["调性关键词1", "关键词2"],
  "confidence": 0.0-1.0 之间的置信度
}`

// Soft targets the copywriting prompt asks for
const (
	MaxTitleRunes = 20
	MinHashtags   = 5
	MaxHashtags   = 8
)

// BannedWords must not appear in published copy
var BannedWords = []string{"微信", "加我", "二维码"}

func buildRecognitionPrompt() string {
	return recognitionPrompt
}

func buildCopywritingPrompt(meta models.ProductMetadata) string {
	return fmt.Sprintf(`你是一个资深的小红书博主（博主名：时尚达人 OOTD），风格亲和、精致、擅长种草。
你的目标是根据以下商品信息，编写一篇能引起共鸣并吸引互动的图文文案（笔记）。

【商品信息】
类目：%s
品牌：%s
型号：%s
卖点：%s
受众：%s
调性：%s

【写作要求】
1. 标题（Title）：标题要爆，包含 2-3 个 emoji，带一个悬念或利益点，且长度严格控制在 %d 个字符以内。
2. 正文（Body）：
   - 使用第一人称，语气亲切（如：姐妹们、真的被惊艳到、哭死）。
   - 采用分段式排版，每段开头带一个小 emoji。
   - 详细描述使用感受，结合 2-3 个核心卖点。
   - 包含 %d-%d 个热门标签。
3. 引流策略（CTA）：
   - 文末设置互动物（如：求教程的姐妹评论区见、想要清单的扣1）。
   - 禁止出现%s等违规词。

【输出格式】
必须返回 JSON 格式，包含以下字段：
{
  "title": "标题内容",
  "body": "正文内容"
}`,
		meta.ProductCategory,
		meta.Brand,
		meta.Model,
		strings.Join(meta.KeyFeatures, ", "),
		meta.TargetAudience,
		strings.Join(meta.ToneKeywords, ", "),
		MaxTitleRunes,
		MinHashtags,
		MaxHashtags,
		quoteAll(BannedWords),
	)
}

func buildCoverPrompt(meta models.ProductMetadata) string {
	var sb strings.Builder
	sb.WriteString("Product promotional photography for Xiaohongshu (XHS).\n")
	sb.WriteString(fmt.Sprintf("Subject: %s %s (%s).\n", meta.Brand, meta.Model, meta.ProductCategory))
	sb.WriteString(fmt.Sprintf("Features to highlight: %s.\n", strings.Join(meta.KeyFeatures, ", ")))
	sb.WriteString(fmt.Sprintf("Style: %s, elegant, minimal, high-end magazine style.\n", strings.Join(meta.ToneKeywords, ", ")))
	sb.WriteString("Setting: Minimalist studio background with soft lighting, rose gold accents, aesthetic composition.\n")
	sb.WriteString("\nTechnical Requirements:\n")
	sb.WriteString("- 3:4 Vertical Aspect Ratio.\n")
	sb.WriteString("- High resolution, detailed textures.\n")
	sb.WriteString("- No text or watermarks.\n")
	sb.WriteString("- Professional commercial photography lighting.\n")
	return sb.String()
}

func quoteAll(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = "“" + w + "”"
	}
	return strings.Join(quoted, "")
}
