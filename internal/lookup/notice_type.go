package lookup

import "mofa_notifier/internal/domain"

var defaultNoticeTypes = map[string]string{
	domain.NoticeTypeSpot:        "海外安全情報(スポット情報)",
	domain.NoticeTypeRisk:        "海外安全情報(危険情報)",
	domain.NoticeTypeInfection:   "海外安全情報(感染症危険情報)",
	domain.NoticeTypeWideArea:    "海外安全情報(広域情報)",
	domain.NoticeTypeMailGeneral: "領事メール(一般)",
	domain.NoticeTypeMailUrgent:  "領事メール(緊急)",
}
