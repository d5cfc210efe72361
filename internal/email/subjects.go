package email

const (
	subjectCaseDisbursedFmt = "Case %s disbursed"
	subjectCaseDeclinedFmt  = "Case %s declined"
	subjectCaseWithdrawnFmt = "Case %s withdrawn"
	subjectCaseClosedFmt    = "Case %s closed"
)
