package service

import "strings"

// 训练表使用的标准球队名称
const (
	TeamU12Girls = "U-12 Ж"
	TeamU12Boys  = "U-12 М"
	TeamU18Girls = "U-18 Ж"
	TeamU18Boys  = "U-18 М"
	TeamSenior   = "Старша"
)

// ScheduleTeamNames 物化前需要保证存在的球队
var ScheduleTeamNames = []string{TeamU12Girls, TeamU12Boys, TeamU18Girls, TeamU18Boys, TeamSenior}

const defaultTeamColor = "#0d6efd"

var teamColors = map[string]string{
	TeamU12Girls: "#dc3545",
	TeamU12Boys:  "#0d6efd",
	TeamU18Girls: "#d63384",
	TeamU18Boys:  "#198754",
	TeamSenior:   "#6f42c1",
}

// 拉丁与西里尔写法统一为 u-12 / u-18 / ж / м
var labelReplacer = strings.NewReplacer(
	"u12", "u-12",
	"u 12", "u-12",
	"у12", "u-12",
	"у 12", "u-12",
	"у-12", "u-12",
	"u18", "u-18",
	"u 18", "u-18",
	"у18", "u-18",
	"у 18", "u-18",
	"у-18", "u-18",
	"girls", "ж",
	"момичета", "ж",
	"boys", "м",
	"момчета", "м",
	"мъже", "м",
)

// NormalizeTeamLabel 将各种写法的球队名映射为标准名称
// 无法识别时返回去掉首尾空白的原始输入；对标准名称幂等
func NormalizeTeamLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	n := strings.Join(strings.Fields(strings.ToLower(trimmed)), " ")
	n = labelReplacer.Replace(n)

	switch {
	case strings.Contains(n, "u-12") && strings.Contains(n, "ж"):
		return TeamU12Girls
	case strings.Contains(n, "u-12") && strings.Contains(n, "м"):
		return TeamU12Boys
	case strings.Contains(n, "u-18") && strings.Contains(n, "ж"):
		return TeamU18Girls
	case strings.Contains(n, "u-18") && strings.Contains(n, "м"):
		return TeamU18Boys
	case strings.Contains(n, "старша"):
		return TeamSenior
	}
	return trimmed
}

// isScheduleTeam 是否为标准名称
func isScheduleTeam(name string) bool {
	_, ok := teamColors[name]
	return ok
}

// legacyTeamTarget 旧数据中的球队应改名为哪个标准名称；无对应时返回空
func legacyTeamTarget(name string) string {
	if isScheduleTeam(name) {
		return ""
	}
	if label := NormalizeTeamLabel(name); isScheduleTeam(label) {
		return label
	}
	if strings.Contains(strings.ToLower(name), "senior") {
		return TeamSenior
	}
	return ""
}

// TeamColor 日历中球队的显示颜色
func TeamColor(name string) string {
	if c, ok := teamColors[NormalizeTeamLabel(name)]; ok {
		return c
	}
	return defaultTeamColor
}

// guessVenue 从训练课备注中识别场地
func guessVenue(notes string) string {
	text := strings.ToUpper(strings.TrimSpace(notes))
	for _, venue := range []string{"НУПИ", "ЧАВДАР", "СТАДИОН"} {
		if strings.Contains(text, venue) {
			return venue
		}
	}
	return ""
}
