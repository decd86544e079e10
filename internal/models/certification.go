package models

// CertificateThreshold is the minimum score that earns a downloadable
// certificate.
const CertificateThreshold = 120

// Certification is a rank awarded from the final score.
type Certification struct {
	Level    string `yaml:"level" json:"level"`
	MinScore int    `yaml:"min_score" json:"minScore"`
	Title    string `yaml:"title" json:"title"`
	Badge    string `yaml:"badge" json:"badge"`
}

// CertificationLevels is ordered by ascending MinScore.
var CertificationLevels = []Certification{
	{Level: "Trainee", MinScore: 0, Title: "Cyber Trainee", Badge: "ShieldOff"},
	{Level: "Analyst", MinScore: 400, Title: "Junior Analyst", Badge: "ShieldCheck"},
	{Level: "Defender", MinScore: 800, Title: "Cyber Defender", Badge: "Shield"},
	{Level: "Guardian", MinScore: 1100, Title: "Cyber Guardian", Badge: "ShieldAlert"},
}

// CertificationFor returns the highest level reached by score. Negative scores
// still get the lowest level.
func CertificationFor(score int) Certification {
	for i := len(CertificationLevels) - 1; i >= 0; i-- {
		if score >= CertificationLevels[i].MinScore {
			return CertificationLevels[i]
		}
	}
	return CertificationLevels[0]
}

// EarnsCertificate reports whether score is high enough for a certificate.
func EarnsCertificate(score int) bool {
	return score >= CertificateThreshold
}
