package assistant

import (
	"fmt"
	"strings"

	"cooksy/internal/core/ai/provider"
	"cooksy/internal/core/recipe"
	"cooksy/internal/core/session"
)

// 角色設定與固定文案
const (
	RecipePersona = "Anda adalah 'Cooksy' 🧑‍🍳, seorang teman masak AI yang super ramah, gaul, dan penuh semangat. " +
		"Keahlian UTAMA Anda adalah menciptakan resep masakan Indonesia yang lezat dan anti-gagal. " +
		"Gunakan bahasa yang santai, sapa pengguna dengan 'Foodie' atau 'Bestie', dan selalu gunakan emoji yang ceria."

	ChatPersona = "Anda adalah 'Cooksy' 🧑‍🍳, seorang teman masak AI yang super ramah, gaul, dan penuh semangat. " +
		"Keahlian UTAMA Anda adalah menciptakan resep masakan Indonesia yang lezat dan anti-gagal. " +
		"Anda juga BISA dan SUKA ngobrol santai tentang topik lain di luar memasak. " +
		"Gunakan bahasa yang santai, sapa pengguna dengan 'Foodie' atau 'Bestie', dan selalu gunakan emoji yang ceria."

	Greeting = "Hai, Foodie! Aku **Cooksy** 🧑‍🍳, teman masak virtualmu! Siap bikin masakan enak hari ini? " +
		"Atau mau ngobrol-ngobrol dulu juga boleh, lho!"

	classificationTemplate = "Apakah pertanyaan ini meminta resep masakan? Jawab HANYA 'Resep' atau 'Obrolan'.\n\nPertanyaan: \"%s\""

	minimalistFormat = "**Format Jawaban (Markdown):**\n# [Nama Masakan Simpel]\n## 🍳 Bahan\n## 🥣 Langkah\n## ⏱️ Waktu"
	datasetFormat    = "**Format Jawaban (Markdown):**\n# [Nama Masakan Keren]\n## 🍳 Bahan & Takaran\n## 🥣 Langkah Memasak\n## ✨ Tips (Opsional)"
)

// OpeningMessages 新對話的開場訊息
func OpeningMessages() []session.Message {
	return []session.Message{
		{Role: provider.RoleSystem, Content: ChatPersona},
		{Role: provider.RoleAssistant, Content: Greeting},
	}
}

// ClassificationPrompt 意圖分類提示詞
func ClassificationPrompt(turn string) string {
	return fmt.Sprintf(classificationTemplate, turn)
}

// MinimalistPrompt 只使用使用者食材的極簡食譜
func MinimalistPrompt(tokens []string) []provider.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "**Bahan:** %s\n\n", strings.Join(tokens, ", "))
	b.WriteString("**Tugas:** Buat satu resep super simpel HANYA pakai bahan di atas. **ATURAN WAJIB:** Jangan tambah bahan lain sama sekali.\n\n")
	b.WriteString(minimalistFormat)

	return []provider.Message{
		{Role: provider.RoleSystem, Content: RecipePersona},
		{Role: provider.RoleUser, Content: b.String()},
	}
}

// DatasetPrompt 以資料集中最相近的食譜為靈感，match 為 nil 時請模型自由發揮
func DatasetPrompt(tokens []string, match *recipe.Match) []provider.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "**Bahan utama:** %s\n\n", strings.Join(tokens, ", "))
	b.WriteString("**Tugas:** Kreasikan ulang resep yang lebih baik berdasarkan bahan pengguna dan inspirasi dari database (jika ada).\n\n")
	if match != nil {
		fmt.Fprintf(&b, "**Inspirasi Resep:**\n- Nama: %s\n- Bahan Asli: %s\n\n",
			match.Record.Title, strings.Join(match.Record.Ingredients, ", "))
	} else {
		b.WriteString("**Info:** Tidak ada resep mirip di database, jadi buatkan resep baru yang kreatif.\n\n")
	}
	b.WriteString(datasetFormat)

	return []provider.Message{
		{Role: provider.RoleSystem, Content: RecipePersona},
		{Role: provider.RoleUser, Content: b.String()},
	}
}

// ChatPrompt 聊天時直接送出完整對話
func ChatPrompt(history []provider.Message) []provider.Message {
	return append([]provider.Message(nil), history...)
}
