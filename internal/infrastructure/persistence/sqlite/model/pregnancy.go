package model

type Pregnancy struct {
	PregnancyID    uint64 `gorm:"column:pregnancy_id;primaryKey;autoIncrement"`
	Key            string `gorm:"column:key;type:text;not null;uniqueIndex"`
	SubmissionDate string `gorm:"column:submission_date;type:text"`
	DeviceID       string `gorm:"column:deviceid;type:text"`
	Today          string `gorm:"column:today;type:text"`
	Start          string `gorm:"column:start;type:text"`
	End            string `gorm:"column:end;type:text"`
	Province       string `gorm:"column:province;type:text"`
	District       string `gorm:"column:district;type:text"`
	Constituency   string `gorm:"column:constituency;type:text"`
	Ward           string `gorm:"column:ward;type:text"`
	EA             string `gorm:"column:ea;type:text"`
	SubmitTime     string `gorm:"column:submit_time;type:text"`
	Supervisor     string `gorm:"column:supervisor;type:text"`
	Enumerator     string `gorm:"column:enumerator;type:text"`
	Respondent     string `gorm:"column:respondent;type:text"`
	Consent        string `gorm:"column:consent;type:text"`
	WomanName      string `gorm:"column:woman_name;type:text"`
	WomanDOB       string `gorm:"column:woman_dob;type:text"`
}

func (Pregnancy) TableName() string {
	return "pregnancies"
}

type PregnancyOutcome struct {
	PregnancyOutcomeID uint64 `gorm:"column:pregnancy_outcome_id;primaryKey;autoIncrement"`
	Key                string `gorm:"column:key;type:text;not null;uniqueIndex"`
	SubmissionDate     string `gorm:"column:submission_date;type:text"`
	DeviceID           string `gorm:"column:deviceid;type:text"`
	Today              string `gorm:"column:today;type:text"`
	Start              string `gorm:"column:start;type:text"`
	End                string `gorm:"column:end;type:text"`
	Province           string `gorm:"column:province;type:text"`
	District           string `gorm:"column:district;type:text"`
	Constituency       string `gorm:"column:constituency;type:text"`
	Ward               string `gorm:"column:ward;type:text"`
	EA                 string `gorm:"column:ea;type:text"`
	SubmitTime         string `gorm:"column:submit_time;type:text"`
	Supervisor         string `gorm:"column:supervisor;type:text"`
	Enumerator         string `gorm:"column:enumerator;type:text"`
	Respondent         string `gorm:"column:respondent;type:text"`
	Consent            string `gorm:"column:consent;type:text"`
	Outcome            string `gorm:"column:outcome;type:text"`
	OutcomeDate        string `gorm:"column:outcome_date;type:text"`
}

func (PregnancyOutcome) TableName() string {
	return "pregnancy_outcomes"
}
