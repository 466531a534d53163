package bot

import (
	"fmt"
	"strings"
	"time"

	"moneytrack/internal/budget"
	"moneytrack/internal/core"
	"moneytrack/internal/report"
	"moneytrack/internal/services"
	"moneytrack/internal/sheets"
)

// Reply keyboard texts. Incoming text is matched against them exactly.
const (
	MenuAdd        = "➕ Tambah Pengeluaran"
	MenuHistory    = "📄 Riwayat"
	MenuToday      = "📊 Laporan Hari Ini"
	MenuWeekly     = "📈 Laporan Mingguan"
	MenuMonthly    = "📅 Laporan Bulanan"
	MenuBudget     = "🎯 Set Budget"
	MenuDelete     = "🗑️ Hapus Data"
	MenuExport     = "📤 Ekspor Excel"
	MenuDonate     = "💰 Donasi"
	MenuHelp       = "ℹ️ Bantuan"
	MenuOwnerPanel = "🛠 Owner Panel"
	MenuBack       = "⬅️ Kembali ke Menu"
)

// Callback data carried by inline buttons.
const (
	CallbackBackToMenu     = "back_to_menu"
	CallbackDeleteToday    = "delete_today"
	CallbackDeleteWeek     = "delete_week"
	CallbackDeleteAll      = "delete_all"
	CallbackOwnerBroadcast = "owner_broadcast"
	CallbackOwnerStats     = "owner_stats"
	CallbackOwnerDonor     = "owner_donator"
)

const (
	textStoreError   = "❌ Terjadi kesalahan, coba lagi."
	textUnknown      = "❓ Perintah tidak dikenali."
	textOwnerOnly    = "❌ Fitur ini hanya untuk owner."
	textRateLimited  = "⏳ Terlalu banyak pesan. Coba lagi sebentar."
	textEntryExample = "Contoh: `15000 Makan siang`"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escape protects user supplied text inside a Markdown reply.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func plain(text string) Reply {
	return Reply{Text: text}
}

// withBack attaches the single "back to menu" keyboard.
func withBack(text string) Reply {
	return Reply{Text: text, Markdown: true, Keyboard: [][]string{{MenuBack}}}
}

func mainMenu(owner bool) Reply {
	kb := [][]string{
		{MenuAdd, MenuHistory},
		{MenuToday, MenuWeekly},
		{MenuMonthly, MenuBudget},
		{MenuDelete, MenuExport},
		{MenuDonate, MenuHelp},
	}
	if owner {
		kb = append(kb, []string{MenuOwnerPanel})
	}
	return Reply{
		Text:     "📊 *MoneyTrack Bot - Menu Utama*\n\nKelola keuangan harianmu dengan mudah!",
		Markdown: true,
		Keyboard: kb,
	}
}

func welcome(name string, owner bool) Reply {
	r := mainMenu(owner)
	greeting := "👋 Halo"
	if name != "" {
		greeting += " " + escape(name)
	}
	r.Text = greeting + "!\n\n" + r.Text
	return r
}

func categoryPrompt() Reply {
	kb := make([][]string, 0, len(core.Categories)+1)
	for _, c := range core.Categories {
		kb = append(kb, []string{string(c)})
	}
	kb = append(kb, []string{MenuBack})
	return Reply{
		Text: "📌 *Langkah Tambah Pengeluaran*\n\n" +
			"1️⃣ Pilih kategori terlebih dahulu dari daftar di bawah.\n" +
			"2️⃣ Setelah memilih kategori, kamu akan diminta mengetik jumlah & deskripsi.\n\n" +
			"*Contoh:*\n`15000 Makan siang`\n\nSelamat mencatat keuanganmu!",
		Markdown: true,
		Keyboard: kb,
		OneTime:  true,
	}
}

func entryPrompt(c core.Category) Reply {
	return withBack(fmt.Sprintf("✍️ *Tulis pengeluaranmu*\n📂 %s\n%s", c, textEntryExample))
}

func invalidEntry() Reply {
	return withBack("❌ Format tidak valid. Tulis jumlah dan deskripsi setelah memilih kategori.\n" + textEntryExample)
}

func addGuide() Reply {
	return withBack("📝 *Gunakan fitur kategori default sekarang!*\n\n" +
		"Ketik `/add` lalu pilih kategori, kemudian masukkan nominal dan deskripsi pengeluaran.")
}

func confirmation(e core.Expense) Reply {
	return withBack(fmt.Sprintf("✅ *Pengeluaran Ditambahkan!*\n💰 %s\n📝 %s\n📂 %s",
		core.FormatRupiah(e.Amount), escape(e.Description), e.Category))
}

func budgetAlert(a budget.Alert) Reply {
	if a.Level == budget.LevelExceeded {
		return Reply{
			Text: fmt.Sprintf("🚨 *Budget Harian Terlampaui!*\n\n💰 Total hari ini: %s\n🎯 Budget harian: %s\n❌ Kelebihan: %s",
				core.FormatRupiah(a.Total), core.FormatRupiah(a.Budget), core.FormatRupiah(a.Overage)),
			Markdown: true,
		}
	}
	return Reply{
		Text: fmt.Sprintf("⚠️ *Peringatan Budget!*\n\n💰 Total hari ini: %s\n🎯 Budget harian: %s\n📊 Terpakai: %s%%\n💡 Sisa: %s",
			core.FormatRupiah(a.Total), core.FormatRupiah(a.Budget), a.UsedPercent.StringFixed(1), core.FormatRupiah(a.Remaining)),
		Markdown: true,
	}
}

func budgetUsage() Reply {
	return withBack("💡 *Format Set Budget:*\n\n`/budget [jenis] [jumlah]`\n\n" +
		"*Jenis Budget:*\n• `daily` - Budget harian\n• `weekly` - Budget mingguan\n• `monthly` - Budget bulanan\n\n" +
		"*Contoh:*\n`/budget daily 100000`\n`/budget weekly 500000`\n`/budget monthly 2000000`")
}

func budgetSet(b core.Budget, p core.Period) Reply {
	return withBack(fmt.Sprintf("✅ Budget %s berhasil diset ke %s", p.Label(), core.FormatRupiah(b.Amount)))
}

// budgetLines renders the budget block appended to a report.
func budgetLines(s *budget.Status) string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n🎯 *Budget %s: %s*\n", s.Period.Label(), core.FormatRupiah(s.Budget))
	if s.Remaining >= 0 {
		fmt.Fprintf(&b, "✅ *Sisa Budget: %s (%s%% terpakai)*", core.FormatRupiah(s.Remaining), s.UsedPercent.StringFixed(1))
	} else {
		fmt.Fprintf(&b, "❌ *Kelebihan Budget: %s (%s%% terpakai)*", core.FormatRupiah(-s.Remaining), s.UsedPercent.StringFixed(1))
	}
	return b.String()
}

func categoryLines(b *strings.Builder, a report.Aggregate, cats []report.CategoryTotal) {
	for _, c := range cats {
		fmt.Fprintf(b, "• %s: %s (%s%%)\n", c.Category, core.FormatRupiah(c.Amount), a.Percentage(c.Amount).StringFixed(1))
	}
}

func dailyReport(v services.DailyView) Reply {
	if v.Empty() {
		return withBack("📭 Belum ada pengeluaran hari ini.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Laporan Pengeluaran Hari Ini*\n📅 %s\n\n", report.LongDate(v.Date))
	b.WriteString("📂 *Pengeluaran per Kategori:*\n")
	categoryLines(&b, v.Aggregate, v.ByCategory)
	fmt.Fprintf(&b, "\n💰 *Total Hari Ini: %s*\n", core.FormatRupiah(v.Total))
	fmt.Fprintf(&b, "📝 *Jumlah Transaksi: %d*\n", v.Count)
	b.WriteString(budgetLines(v.Budget))
	return withBack(strings.TrimRight(b.String(), "\n"))
}

func weeklyReport(v services.WeeklyView) Reply {
	if v.Empty() {
		return withBack("📭 Belum ada pengeluaran minggu ini.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📈 *Laporan Mingguan*\n📅 %s - %s\n\n", report.LongDate(v.WindowStart), report.LongDate(v.WindowEnd))
	b.WriteString("📅 *Pengeluaran per Hari:*\n")
	for _, d := range v.Days {
		fmt.Fprintf(&b, "• %s %s: %s\n", report.WeekdayName(d.Start), report.ShortDate(d.Start), core.FormatRupiah(d.Amount))
	}
	fmt.Fprintf(&b, "\n📂 *Top %d Kategori:*\n", report.WeeklyTopCategories)
	categoryLines(&b, v.Aggregate, v.TopCategories)
	fmt.Fprintf(&b, "\n💰 *Total Mingguan: %s*\n", core.FormatRupiah(v.Total))
	fmt.Fprintf(&b, "📝 *Jumlah Transaksi: %d*\n", v.Count)
	fmt.Fprintf(&b, "📊 *Rata-rata per Hari: %s*\n", core.FormatRupiah(v.AveragePerDay))
	b.WriteString(budgetLines(v.Budget))
	return withBack(strings.TrimRight(b.String(), "\n"))
}

func monthlyReport(v services.MonthlyView) Reply {
	if v.Empty() {
		return withBack("📭 Belum ada pengeluaran bulan ini.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📅 *Laporan Bulanan*\n📅 %s - %s\n\n", report.LongDate(v.WindowStart), report.LongDate(v.WindowEnd))
	b.WriteString("📊 *Pengeluaran per Minggu:*\n")
	for i, w := range v.Weeks {
		fmt.Fprintf(&b, "• Minggu %d (%s): %s\n", i+1, report.ShortDate(w.Start), core.FormatRupiah(w.Amount))
	}
	b.WriteString("\n📂 *Kategori Pengeluaran:*\n")
	categoryLines(&b, v.Aggregate, v.ByCategory)
	fmt.Fprintf(&b, "\n💰 *Total Bulanan: %s*\n", core.FormatRupiah(v.Total))
	fmt.Fprintf(&b, "📝 *Jumlah Transaksi: %d*\n", v.Count)
	fmt.Fprintf(&b, "📊 *Rata-rata per Hari: %s*\n", core.FormatRupiah(v.AveragePerDay))
	b.WriteString(budgetLines(v.Budget))
	return withBack(strings.TrimRight(b.String(), "\n"))
}

func historyReport(h report.History, loc *time.Location) Reply {
	if len(h.Entries) == 0 {
		return withBack("📭 Belum ada data pengeluaran.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📄 *Riwayat %d Pengeluaran Terakhir*\n\n", report.HistoryLimit)
	for i, e := range h.Entries {
		fmt.Fprintf(&b, "%d. %s\n   📝 %s\n   📂 %s • 📅 %s\n\n",
			i+1, core.FormatRupiah(e.Amount), escape(e.Description), e.Category, report.ShortDate(e.OccurredAt.In(loc)))
	}
	fmt.Fprintf(&b, "💰 *Total: %s*", core.FormatRupiah(h.Total))
	return withBack(b.String())
}

func deleteOptions() Reply {
	return Reply{
		Text:     "🗑️ *Pilih Data yang Ingin Dihapus:*",
		Markdown: true,
		Inline: [][]Button{
			{{Text: "🗑️ Hapus Hari Ini", Data: CallbackDeleteToday}},
			{{Text: "🗑️ Hapus Minggu Ini", Data: CallbackDeleteWeek}},
			{{Text: "🗑️ Hapus Semua Data", Data: CallbackDeleteAll}},
			{{Text: "❌ Batal", Data: CallbackBackToMenu}},
		},
	}
}

func deleted(r core.Removal, period string) Reply {
	if r.Empty() {
		return withBack(fmt.Sprintf("📭 Tidak ada data pengeluaran %s.", period))
	}
	return withBack(fmt.Sprintf("✅ *Data Berhasil Dihapus*\n\n📊 Jumlah transaksi: %d\n💰 Total nilai: %s\n📅 Periode: %s",
		r.Count, core.FormatRupiah(r.Sum), period))
}

func deletedAll(r core.Removal) Reply {
	if r.Empty() {
		return withBack("📭 Tidak ada data untuk dihapus.")
	}
	return withBack("✅ Semua data pengeluaran berhasil dihapus.")
}

// exported attaches the rendered file; the caption lists its tabs.
func exported(f sheets.File, w report.Workbook) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "📄 *Laporan Keuangan Lengkap*\n\n📊 Total Transaksi: %d\n💰 Total Pengeluaran: %s\n📅 Periode: %s - %s\n\n*Sheet yang tersedia:*",
		len(w.Details), core.FormatRupiah(w.Total), report.ShortDate(w.FirstDate), report.ShortDate(w.LastDate))
	for _, t := range sheets.Tables(w) {
		b.WriteString("\n• " + t.Name)
	}
	r := withBack(b.String())
	r.Document = &Document{Name: f.Name, Data: f.Data}
	return r
}

func donation() Reply {
	return withBack("💰 *Dukung Pengembangan Bot*\n\n" +
		"Jika bot ini bermanfaat, kamu bisa memberikan donasi untuk mendukung pengembangan lebih lanjut.\n\n" +
		"Ketik `/qris` untuk melihat QR code donasi.\n\nTerima kasih! 🙏")
}

func qris() Reply {
	return withBack("💰 *Dukung Pengembangan Bot*\n\n" +
		"Jika bot ini bermanfaat, kamu bisa memberikan donasi untuk mendukung pengembangan lebih lanjut.\n\n" +
		"💳 Donasi: Seikhlasnya\n📱 Scan QRIS lalu kirim bukti ke owner bot\n\nTerima kasih atas dukunganmu! 🙏")
}

func help() Reply {
	var cats []string
	for _, c := range core.Categories {
		cats = append(cats, string(c))
	}
	return withBack("ℹ️ *Bantuan MoneyTrack Bot*\n\n" +
		"*🔧 Perintah Utama:*\n" +
		"• `/add` - Tambah pengeluaran (pilih kategori lalu tulis jumlah & deskripsi)\n" +
		"• `/budget [jenis] [jumlah]` - Set budget (daily/weekly/monthly)\n" +
		"• `/qris` - Donasi\n" +
		"• `/menu` - Kembali ke menu utama\n\n" +
		"*📊 Fitur Laporan:*\n" +
		"• Laporan harian dengan breakdown kategori\n" +
		"• Laporan mingguan dengan trend\n" +
		"• Laporan bulanan per minggu\n" +
		"• Ekspor data ke spreadsheet\n\n" +
		"*🎯 Fitur Budget:*\n" +
		"• Budget harian, mingguan, dan bulanan\n" +
		"• Notifikasi otomatis saat mendekati limit\n\n" +
		"*📂 Kategori:*\n" + strings.Join(cats, ", "))
}

func ownerPanel() Reply {
	return Reply{
		Text:     "🛠 *Panel Owner*\n\nPilih aksi yang ingin dilakukan:",
		Markdown: true,
		Inline: [][]Button{
			{{Text: "📢 Broadcast", Data: CallbackOwnerBroadcast}},
			{{Text: "📊 Statistik Bot", Data: CallbackOwnerStats}},
			{{Text: "💰 Kelola Donatur", Data: CallbackOwnerDonor}},
			{{Text: "⬅️ Kembali", Data: CallbackBackToMenu}},
		},
	}
}

func broadcastUsage() Reply {
	return Reply{
		Text: "📢 *Broadcast Pesan*\n\nGunakan format:\n`/broadcast [pesan yang ingin dikirim]`\n\n" +
			"Contoh:\n`/broadcast Update bot: Fitur baru telah ditambahkan!`",
		Markdown: true,
	}
}

func announcement(msg string) Reply {
	return Reply{Text: "📢 *Pengumuman*\n\n" + escape(msg), Markdown: true}
}

func broadcastDone(res services.FanOutResult) Reply {
	return plain(fmt.Sprintf("✅ Broadcast berhasil dikirim ke %d/%d pengguna.", res.Succeeded, res.Attempted))
}

func donorUsage() Reply {
	return Reply{
		Text: "💰 *Kelola Donatur*\n\nGunakan perintah:\n" +
			"• `/adddonator [user_id]` - Tambah donatur\n" +
			"• `/removedonator [user_id]` - Hapus donatur\n" +
			"• `/listdonator` - Lihat daftar donatur",
		Markdown: true,
	}
}

func donorThanks() Reply {
	return Reply{
		Text:     "🎉 *Terima Kasih!*\n\nKamu telah terdaftar sebagai donatur MoneyTrack Bot. Terima kasih atas dukunganmu! 💰",
		Markdown: true,
	}
}

func donorList(donors []core.Donor, loc *time.Location) Reply {
	if len(donors) == 0 {
		return plain("📭 Belum ada donatur terdaftar.")
	}
	var b strings.Builder
	b.WriteString("💰 *Daftar Donatur*\n\n")
	for i, d := range donors {
		fmt.Fprintf(&b, "%d. ID: %s\n   📅 %s\n   ✅ %s\n\n", i+1, escape(d.UserID), report.ShortDate(d.Date.In(loc)), d.Status)
	}
	return Reply{Text: strings.TrimRight(b.String(), "\n"), Markdown: true}
}

// Stats is the owner view of bot usage.
type Stats struct {
	Users        int
	ActiveWeek   int
	Transactions int
	Donors       int
	At           time.Time
}

func statsReply(s Stats) Reply {
	return Reply{
		Text: fmt.Sprintf("📊 *Statistik Detail Bot*\n\n👥 Total Pengguna: %d\n🟢 Aktif Minggu Ini: %d\n📦 Total Transaksi: %d\n💰 Total Donatur: %d\n📅 Update: %s",
			s.Users, s.ActiveWeek, s.Transactions, s.Donors, report.LongDate(s.At)),
		Markdown: true,
	}
}

// scheduledDaily is the daily report pushed by the scheduler.
func scheduledDaily(v services.DailyView) Reply {
	r := dailyReport(v)
	r.Keyboard = nil
	r.Text = "🕗 *Laporan Otomatis*\n\n" + r.Text
	return r
}
