package i18n

// Label tables. Keys are shared by every language; English is the
// fallback for keys a language does not define.
var messages = map[Lang]map[string]string{
	English: {
		"title":    "Cloud Service EOL Tracker",
		"subtitle": "Stay informed about cloud service deprecations and end-of-life dates",

		"searchPlaceholder": "Search services...",
		"allVendors":        "All Vendors",
		"allCategories":     "All Categories",
		"upcomingOnly":      "Upcoming EOL Only",
		"allTime":           "All Time",
		"alreadyEOL":        "Already EOL",
		"next30Days":        "Next 30 days",
		"next90Days":        "Next 90 days",
		"next6Months":       "Next 6 months",
		"nextYear":          "Next year",

		"sortEOLSoon": "EOL Date (Soon first)",
		"sortEOLLate": "EOL Date (Latest first)",
		"sortNameAZ":  "Service Name (A-Z)",
		"sortNameZA":  "Service Name (Z-A)",
		"sortVendor":  "Vendor (A-Z)",

		"tableView": "Table View",
		"cardView":  "Card View",

		"loading":      "Loading cloud service data...",
		"errorMessage": "Failed to load data. Please try again later.",
		"emptyMessage": "No services match your filters. Try adjusting your search criteria.",

		"errorOffline":   "You are offline. Please check your internet connection.",
		"errorServer":    "Server error. Please try again later.",
		"errorClient":    "Failed to load data. Please refresh the page.",
		"errorMalformed": "Invalid data format. Please contact support.",
		"errorUnknown":   "Failed to load data. Please refresh the page or try again later.",

		"dataLastUpdated":      "Data last updated",
		"disclaimerTitle":      "Disclaimer",
		"disclaimerAccuracy":   "This information may contain errors. Please verify with official sources before making decisions.",
		"disclaimerNoWarranty": "This information is provided \"as is\" without warranty of any kind, either expressed or implied.",
		"disclaimerNoSLA":      "No Service Level Agreement (SLA) or guarantee of accuracy, completeness, or timeliness is provided.",
		"disclaimerTrademarks": "All trademarks, service marks, and company names are the property of their respective owners.",
		"disclaimerLiability":  "The authors and contributors are not liable for any damages arising from the use of this information.",

		"eolDate":              "EOL Date",
		"timeUntilEOL":         "Time Until EOL",
		"supportEndDate":       "Support End Date",
		"officialAnnouncement": "Official Announcement",
		"alternatives":         "Alternatives",
		"vendor":               "Vendor",
		"serviceName":          "Service Name",
		"category":             "Category",
		"status":               "Status",
		"officialLink":         "Official Link",

		"statusEOL":        "EOL",
		"statusEndingSoon": "Ending Soon",
		"statusActive":     "Active",

		"daysAgo":      "{days} days ago",
		"today":        "Today",
		"tomorrow":     "Tomorrow",
		"days":         "{days} days",
		"month":        "{months} month",
		"months":       "{months} months",
		"year":         "{years} year",
		"years":        "{years} years",
		"unknown":      "Unknown",
		"notAvailable": "N/A",

		"servicesCount": "{count} of {total} services",
		"lastUpdated":   "Last updated: {date}",

		"csvHeaderVendor":         "Vendor",
		"csvHeaderServiceName":    "Service Name",
		"csvHeaderCategory":       "Category",
		"csvHeaderEolDate":        "EOL Date",
		"csvHeaderSupportEndDate": "Support End Date",
		"csvHeaderStatus":         "Status",
		"csvHeaderDaysUntilEol":   "Days Until EOL",
		"csvHeaderDescription":    "Description",
		"csvHeaderOfficialUrl":    "Official URL",
		"csvHeaderAlternatives":   "Alternatives",
	},
	Japanese: {
		"title":    "クラウドサービスEOLトラッカー",
		"subtitle": "クラウドサービスの廃止予定とサポート終了日を確認",

		"searchPlaceholder": "サービスを検索...",
		"allVendors":        "すべてのベンダー",
		"allCategories":     "すべてのカテゴリ",
		"upcomingOnly":      "予定のみ表示",
		"allTime":           "すべての期間",
		"alreadyEOL":        "すでにEOL",
		"next30Days":        "今後30日",
		"next90Days":        "今後90日",
		"next6Months":       "今後6ヶ月",
		"nextYear":          "今後1年",

		"sortEOLSoon": "EOL日（近い順）",
		"sortEOLLate": "EOL日（遠い順）",
		"sortNameAZ":  "サービス名（A-Z）",
		"sortNameZA":  "サービス名（Z-A）",
		"sortVendor":  "ベンダー（A-Z）",

		"tableView": "テーブル表示",
		"cardView":  "カード表示",

		"loading":      "データを読み込んでいます...",
		"errorMessage": "データの読み込みに失敗しました。後でもう一度お試しください。",
		"emptyMessage": "フィルター条件に一致するサービスがありません。検索条件を調整してください。",

		"errorOffline":   "オフラインです。インターネット接続を確認してください。",
		"errorServer":    "サーバーエラーが発生しました。後でもう一度お試しください。",
		"errorClient":    "データの読み込みに失敗しました。ページを再読み込みしてください。",
		"errorMalformed": "データ形式が正しくありません。サポートにお問い合わせください。",
		"errorUnknown":   "データの読み込みに失敗しました。ページを再読み込みするか、後でもう一度お試しください。",

		"dataLastUpdated":      "データ最終更新",
		"disclaimerTitle":      "免責事項",
		"disclaimerAccuracy":   "この情報には誤りが含まれる可能性があります。判断する前に必ず公式情報をご確認ください。",
		"disclaimerNoWarranty": "この情報は「現状のまま」提供されており、明示的または黙示的を問わず、いかなる保証も行いません。",
		"disclaimerNoSLA":      "正確性、完全性、適時性に関するサービスレベル契約（SLA）や保証は提供されません。",
		"disclaimerTrademarks": "すべての商標、サービスマーク、企業名は各所有者に帰属します。",
		"disclaimerLiability":  "本情報の利用により生じたいかなる損害についても、作成者および貢献者は責任を負いません。",

		"eolDate":              "EOL日",
		"timeUntilEOL":         "EOLまでの期間",
		"supportEndDate":       "サポート終了日",
		"officialAnnouncement": "公式発表",
		"alternatives":         "代替サービス",
		"vendor":               "ベンダー",
		"serviceName":          "サービス名",
		"category":             "カテゴリ",
		"status":               "ステータス",
		"officialLink":         "公式リンク",

		"statusEOL":        "サポート終了",
		"statusEndingSoon": "終了予定",
		"statusActive":     "稼働中",

		"daysAgo":      "{days}日前",
		"today":        "今日",
		"tomorrow":     "明日",
		"days":         "{days}日",
		"month":        "{months}ヶ月",
		"months":       "{months}ヶ月",
		"year":         "{years}年",
		"years":        "{years}年",
		"unknown":      "不明",
		"notAvailable": "N/A",

		"servicesCount": "{total}件中{count}件のサービス",
		"lastUpdated":   "最終更新: {date}",

		"csvHeaderVendor":         "ベンダー",
		"csvHeaderServiceName":    "サービス名",
		"csvHeaderCategory":       "カテゴリ",
		"csvHeaderEolDate":        "EOL日",
		"csvHeaderSupportEndDate": "サポート終了日",
		"csvHeaderStatus":         "ステータス",
		"csvHeaderDaysUntilEol":   "EOLまでの日数",
		"csvHeaderDescription":    "説明",
		"csvHeaderOfficialUrl":    "公式URL",
		"csvHeaderAlternatives":   "代替サービス",
	},
}
