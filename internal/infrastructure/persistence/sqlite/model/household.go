package model

// Household mirrors the household-census form export. Every survey column is
// text: the client form tools emit free-form strings and the engine does its
// own normalization.
type Household struct {
	HouseholdID    uint64 `gorm:"column:household_id;primaryKey;autoIncrement"`
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
	ResultList     string `gorm:"column:result_list;type:text"`
	ResultOther    string `gorm:"column:result_other;type:text"`
	SubmitTime     string `gorm:"column:submit_time;type:text"`
	Household      string `gorm:"column:household;type:text"`
	HUN            string `gorm:"column:hun;type:text"`
	HHN            string `gorm:"column:hhn;type:text"`
	Respondent     string `gorm:"column:respondent;type:text"`
	Enumerator     string `gorm:"column:enumerator;type:text"`
	Supervisor     string `gorm:"column:supervisor;type:text"`
	Consent        string `gorm:"column:consent;type:text"`
	HH01           string `gorm:"column:hh_01;type:text"`
	HH02           string `gorm:"column:hh_02;type:text"`
	HH16           string `gorm:"column:hh_16;type:text"`
	HH16A          string `gorm:"column:hh_16a;type:text"`
	HH17           string `gorm:"column:hh_17;type:text"`
	HH17A          string `gorm:"column:hh_17a;type:text"`
	HH18           string `gorm:"column:hh_18;type:text"`
	HH18A          string `gorm:"column:hh_18a;type:text"`
	HH19           string `gorm:"column:hh_19;type:text"`
	HH19A          string `gorm:"column:hh_19a;type:text"`
	HH20           string `gorm:"column:hh_20;type:text"`
	HH21           string `gorm:"column:hh_21;type:text"`
	HH22           string `gorm:"column:hh_22;type:text"`
}

func (Household) TableName() string {
	return "households"
}
