package transport

type ListSourcesRequest struct {
	ChannelID string `form:"channelId" validate:"omitempty,max=64"`
}

type ListSubSourcesRequest struct {
	SourceID string `form:"sourceId" validate:"omitempty,uuid"`
}

type ListCampaignsRequest struct {
	Status string `form:"status" validate:"omitempty,oneof=incubation live pause"`
}

type ListBankProductsRequest struct {
	Active           *bool  `form:"active"`
	Exclusive        *bool  `form:"exclusive"`
	BankName         string `form:"bankName" validate:"omitempty,max=100"`
	MortgageType     string `form:"mortgageType" validate:"omitempty,max=40"`
	InterestRateType string `form:"rateType" validate:"omitempty,oneof=fixed variable"`
	MinLTV           string `form:"ltvMin" validate:"omitempty,numeric"`
	Page             int    `form:"page" validate:"omitempty,min=1"`
	PageSize         int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type ChannelResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TrustLevel string `json:"trustLevel"`
}

type SourceResponse struct {
	ID           string  `json:"id"`
	ChannelID    string  `json:"channelId"`
	Name         string  `json:"name"`
	ContactPhone *string `json:"contactPhone,omitempty"`
}

type SubSourceResponse struct {
	ID            string  `json:"id"`
	SourceID      string  `json:"sourceId"`
	Name          string  `json:"name"`
	ContactPhone  *string `json:"contactPhone,omitempty"`
	Status        string  `json:"status"`
	DefaultSLAMin *int    `json:"defaultSlaMin,omitempty"`
}

type CampaignResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// BankProductResponse carries rates as decimal strings. EffectiveRate is the
// fixed rate, or the latest EIBOR for the product's term plus its margin.
type BankProductResponse struct {
	ID                   int64   `json:"id"`
	BankName             string  `json:"bankName"`
	BankLogo             *string `json:"bankLogo,omitempty"`
	MortgageType         string  `json:"mortgageType"`
	InterestRateType     string  `json:"interestRateType"`
	EiborType            string  `json:"eiborType"`
	EiborRate            *string `json:"eiborRate"`
	VariableRateAddition string  `json:"variableRateAddition"`
	FixedRate            string  `json:"fixedRate"`
	FixedUntil           int     `json:"fixedUntil"`
	EffectiveRate        *string `json:"effectiveRate"`
	LoanToValueRatio     string  `json:"loanToValueRatio"`
	MaximumLengthYears   int     `json:"maximumLengthYears"`
	IsExclusive          bool    `json:"isExclusive"`
	IsActive             bool    `json:"isActive"`
	ExpiryDate           *string `json:"expiryDate,omitempty"`
}

type BankProductListResponse struct {
	Items      []BankProductResponse `json:"items"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
}

// EiborRatesResponse holds the latest published rate per term; terms without
// a rate on the latest date are null.
type EiborRatesResponse struct {
	Overnight   *string `json:"overnight"`
	OneWeek     *string `json:"oneWeek"`
	OneMonth    *string `json:"oneMonth"`
	ThreeMonths *string `json:"threeMonths"`
	SixMonths   *string `json:"sixMonths"`
	OneYear     *string `json:"oneYear"`
	LastUpdated *string `json:"lastUpdated"`
}
