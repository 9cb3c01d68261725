package mofa

// Mail is one <mail> element of newarrivalL.xml.
type Mail struct {
	InfoType     string `xml:"infoType"`
	InfoName     string `xml:"infoName"`
	InfoNameLong string `xml:"infoNameLong"`
	LeaveDate    string `xml:"leaveDate"`
	Title        string `xml:"title"`
	InfoURL      string `xml:"infoUrl"`
	KoukanCd     string `xml:"koukanCd"`
	KoukanName   string `xml:"koukanName"`

	Country CodeName `xml:"country"`
	Area    CodeName `xml:"area"`

	RiskLevel1 string `xml:"riskLevel1"`
	RiskLevel2 string `xml:"riskLevel2"`
	RiskLevel3 string `xml:"riskLevel3"`
	RiskLevel4 string `xml:"riskLevel4"`

	InfectionLevel1 string `xml:"infectionLevel1"`
	InfectionLevel2 string `xml:"infectionLevel2"`
	InfectionLevel3 string `xml:"infectionLevel3"`
	InfectionLevel4 string `xml:"infectionLevel4"`
}

// CodeName is a nested <cd>/<name> pair such as <country> or <area>.
type CodeName struct {
	Cd   string `xml:"cd"`
	Name string `xml:"name"`
}

func (m Mail) riskLevels() [4]string {
	return [4]string{m.RiskLevel1, m.RiskLevel2, m.RiskLevel3, m.RiskLevel4}
}

func (m Mail) infectionLevels() [4]string {
	return [4]string{m.InfectionLevel1, m.InfectionLevel2, m.InfectionLevel3, m.InfectionLevel4}
}
