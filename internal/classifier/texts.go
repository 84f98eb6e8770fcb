
package classifier

import (
	"fmt"
	"strings"

	"khabar-verifier/internal/models"
)

const (
	trustworthyText = `یہ خبر زیادہ قابل اعتماد لگتی ہے۔

✓ اس میں حوالہ جات اور ذرائع کا ذکر ہے
✓ زبان پیشہ ورانہ اور متوازن ہے
✓ حقائق کی بنیاد پر معلومات فراہم کی گئی ہے

تاہم، براہ کرم متعدد ذرائع سے تصدیق کریں اور اصل خبر کے ذریعے کی ساکھ چیک کریں۔`

	suspiciousText = `یہ خبر مشکوک لگتی ہے اور جھوٹی ہو سکتی ہے۔

⚠️ حسیاتی اور اشتعال انگیز زبان استعمال کی گئی ہے
⚠️ قابل اعتماد ذرائع کا حوالہ نہیں ہے
⚠️ وائرل کرنے کی کوشش نظر آتی ہے

احتیاط: اس خبر کو شیئر کرنے سے پہلے قابل اعتماد ذرائع سے تصدیق کریں۔`

	uncertainText = `اس خبر کی تصدیق میں مزید تحقیق کی ضرورت ہے۔

• کافی معلومات موجود نہیں ہیں
• ذریعے کی ساکھ واضح نہیں ہے
• مزید تحقیق کی سفارش کی جاتی ہے

تجویز: قابل اعتماد نیوز ذرائع سے کراس چیک کریں جیسے کہ BBC Urdu، Dawn News، یا دیگر معتبر ذرائع۔`

	// %[1]s is the Urdu noun for the media kind.
	mediaTemplate = `%[1]s کا تجزیہ:

⚠️ نوٹ: مکمل تجزیہ کے لیے AI vision ماڈل کی ضرورت ہے۔

عام مشورے:
• %[1]s کو Google Reverse Image Search سے چیک کریں
• دیکھیں کہ یہ پہلے کسی اور سیاق و سباق میں استعمال تو نہیں ہوئی
• متعدد قابل اعتماد ذرائع سے تصدیق کریں
• InVID یا TinEye جیسے ٹولز استعمال کریں

احتیاط: جب تک تصدیق نہ ہو جائے اس کو شیئر نہ کریں۔`
)

// MediaConfidence is the fixed confidence reported for uploaded files.
const MediaConfidence = 45

// MediaKind maps a declared media type to image or video.
func MediaKind(contentType string) models.Kind {
	if strings.HasPrefix(contentType, "image/") {
		return models.KindImage
	}
	return models.KindVideo
}

// Media returns the canned response for an uploaded image or video. No
// content is inspected.
func Media(kind models.Kind) models.AnalysisResult {
	noun := "ویڈیو"
	if kind == models.KindImage {
		noun = "تصویر"
	}
	return models.AnalysisResult{
		Verdict:    models.VerdictUncertain,
		Confidence: MediaConfidence,
		Analysis:   fmt.Sprintf(mediaTemplate, noun),
	}
}
