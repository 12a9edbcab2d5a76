package model

type Death struct {
	DeathID        uint64 `gorm:"column:death_id;primaryKey;autoIncrement"`
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
	RuralUrban     string `gorm:"column:rural_urban;type:text"`
	EA             string `gorm:"column:ea;type:text"`
	SubmitTime     string `gorm:"column:submit_time;type:text"`
	Supervisor     string `gorm:"column:supervisor;type:text"`
	Enumerator     string `gorm:"column:enumerator;type:text"`
	Respondent     string `gorm:"column:respondent;type:text"`
	Consent        string `gorm:"column:consent;type:text"`
	DeceasedName   string `gorm:"column:deceased_name;type:text"`
	DateOfDeath    string `gorm:"column:date_of_death;type:text"`
	AgeAtDeath     string `gorm:"column:age_at_death;type:text"`
	SexOfDeceased  string `gorm:"column:sex_of_deceased;type:text"`
	CauseOfDeath   string `gorm:"column:cause_of_death;type:text"`
}

func (Death) TableName() string {
	return "deaths"
}
