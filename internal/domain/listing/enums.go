package listing

// District is the city district a complex is located in.
type District string

// Construction is the building technology.
type Construction string

// Class is the housing class.
type Class string

// FinishState is the finishing state apartments are handed over in.
type FinishState string

const (
	DistrictGreenQuarter   District = "Зеленый квартал"
	DistrictTaldykol       District = "Талдыкол"
	DistrictExpo           District = "Экспо"
	DistrictMosque         District = "Мечеть"
	DistrictNurlyZhol      District = "Нурлы жол"
	DistrictAboveAitmatov  District = "Выше по Айтматова"
	DistrictSpherePark     District = "Сфера Парк"
	DistrictTuran          District = "Туран"
	DistrictUlyDala        District = "Улы Дала"
	DistrictAboveNurlyZhol District = "Выше Нурлы жол"
)

const (
	ConstructionBrick    Construction = "кирпич"
	ConstructionMonolith Construction = "монолит"
)

const (
	ClassStandard    Class = "стандарт"
	ClassComfort     Class = "комфорт"
	ClassComfortPlus Class = "комфорт+"
	ClassBusiness    Class = "бизнес"
)

const (
	FinishRough         FinishState = "Черновая"
	FinishImprovedRough FinishState = "Улучшенная черновая"
	FinishPreFinish     FinishState = "Предчистовая"
	FinishFine          FinishState = "Чистовая"
)

// Payment options offered by the admin form and the list filters.
const (
	PaymentMortgage        = "ст.Ипотека"
	PaymentOtbasy3070      = "Отбасы 30/70"
	PaymentOtbasy5050      = "Отбасы 50/50"
	PaymentDeferral        = "Отсрочка"
	PaymentInstallments    = "Рассрочка"
	PaymentPartnerMortgage = "парт. Ипотека"
	Payment72025           = "7-20-25"
	PaymentNauryz          = "Наурыз"
	PaymentGreenOtbasy     = "Зеленая отбасы"
	PaymentTradeIn         = "Trade in"
)

// KnownDistricts lists districts in the order the UI offers them.
var KnownDistricts = []District{
	DistrictGreenQuarter,
	DistrictTaldykol,
	DistrictExpo,
	DistrictMosque,
	DistrictNurlyZhol,
	DistrictAboveAitmatov,
	DistrictSpherePark,
	DistrictTuran,
	DistrictUlyDala,
	DistrictAboveNurlyZhol,
}

// KnownConstructions lists construction types.
var KnownConstructions = []Construction{ConstructionBrick, ConstructionMonolith}

// KnownClasses lists housing classes from cheapest to most expensive.
var KnownClasses = []Class{ClassStandard, ClassComfort, ClassComfortPlus, ClassBusiness}

// KnownFinishStates lists finish states from rough to fine.
var KnownFinishStates = []FinishState{FinishRough, FinishImprovedRough, FinishPreFinish, FinishFine}

// KnownPaymentOptions lists the payment methods the UI offers. Payment
// methods stay open strings; this list is not enforced.
var KnownPaymentOptions = []string{
	PaymentMortgage,
	PaymentOtbasy3070,
	PaymentOtbasy5050,
	PaymentDeferral,
	PaymentInstallments,
	PaymentPartnerMortgage,
	Payment72025,
	PaymentNauryz,
	PaymentGreenOtbasy,
	PaymentTradeIn,
}

// Options bundles the known values for clients that render selectors.
type Options struct {
	Districts      []District     `json:"districts"`
	Constructions  []Construction `json:"constructions"`
	Classes        []Class        `json:"classes"`
	FinishStates   []FinishState  `json:"finish_states"`
	PaymentOptions []string       `json:"payment_options"`
}

// KnownOptions returns copies of every known value list.
func KnownOptions() Options {
	return Options{
		Districts:      append([]District(nil), KnownDistricts...),
		Constructions:  append([]Construction(nil), KnownConstructions...),
		Classes:        append([]Class(nil), KnownClasses...),
		FinishStates:   append([]FinishState(nil), KnownFinishStates...),
		PaymentOptions: append([]string(nil), KnownPaymentOptions...),
	}
}
