package questionnaire

import "precheck/internal/eligibility/models"

func opts(valueLabel ...string) []Option {
	out := make([]Option, 0, len(valueLabel)/2)
	for i := 0; i+1 < len(valueLabel); i += 2 {
		out = append(out, Option{Value: valueLabel[i], Label: valueLabel[i+1]})
	}
	return out
}

var (
	spouse  = onRoute(models.RouteSpouse)
	skilled = onRoute(models.RouteSkilled)
)

// defaultQuestions declares the pre-check catalog. Basic questions cover every
// key the verdict reads; full adds detail for the checklist and matrix; pro_plus
// adds the evidence detail the gap analysis reads.
func defaultQuestions() []Question {
	return []Question{
		// Personal details
		{
			ID: "nationality", Section: SectionPersonal, Type: TypeShortText,
			Prompt: "What is your nationality?", Placeholder: "e.g. Indian",
			Visible: basic(),
		},
		{
			ID: "passport_valid", Section: SectionPersonal, Type: TypeBoolean,
			Prompt: "Is your passport valid for the whole of your intended stay?",
			Visible: basic(),
		},

		// Relationship (spouse/partner)
		{
			ID: "relationship_type", Section: SectionRelationship, Type: TypeSingleChoice,
			Prompt: "What is your relationship to your UK sponsor?",
			Options: opts(
				"married", "Married",
				"civil_partner", "Civil partner",
				"unmarried_partner", "Unmarried partner (2+ years living together)",
				"fiance", "Fiancé(e) or proposed civil partner",
			),
			Visible: basic(spouse),
		},
		{
			ID: "met_in_person", Section: SectionRelationship, Type: TypeBoolean,
			Prompt: "Have you and your partner met in person?",
			Visible: basic(spouse),
		},
		{
			ID: "sponsor_status", Section: SectionRelationship, Type: TypeSingleChoice,
			Prompt: "What is your sponsor's immigration status?",
			Options: opts(
				"british_citizen", "British citizen",
				"settled", "Settled (ILR or EUSS settled status)",
				"refugee", "Refugee or humanitarian protection",
				"other", "Other",
			),
			Visible: basic(spouse),
		},
		{
			ID: "relationship_length", Section: SectionRelationship, Type: TypeSingleChoice,
			Prompt: "How long have you been in the relationship?",
			Options: opts(
				"under_1_year", "Less than 1 year",
				"1_to_2_years", "1 to 2 years",
				"2_to_5_years", "2 to 5 years",
				"over_5_years", "More than 5 years",
			),
			Visible: full(spouse),
		},
		{
			ID: "joint_accounts", Section: SectionRelationship, Type: TypeBoolean,
			Prompt: "Do you hold any joint bank accounts?",
			Visible: basic(spouse),
		},
		{
			ID: "joint_tenancy", Section: SectionRelationship, Type: TypeBoolean,
			Prompt: "Are you both named on a tenancy agreement or mortgage?",
			Visible: basic(spouse),
		},
		{
			ID: "living_together_since", Section: SectionRelationship, Type: TypeDate,
			Prompt: "Since when have you lived together?", Placeholder: "YYYY-MM-DD",
			Visible: full(spouse, isTrue("joint_tenancy")),
		},
		{
			ID: "children_together", Section: SectionRelationship, Type: TypeBoolean,
			Prompt: "Do you have children together?",
			Visible: full(spouse),
		},

		// Employment (skilled worker)
		{
			ID: "cos_assigned", Section: SectionEmployment, Type: TypeBoolean,
			Prompt: "Has your employer assigned you a Certificate of Sponsorship?",
			Visible: basic(skilled),
		},
		{
			ID: "sw_job_title", Section: SectionEmployment, Type: TypeShortText,
			Prompt: "What is your job title?", Placeholder: "e.g. Software Engineer",
			Visible: basic(skilled),
		},
		{
			ID: "sw_soc_code", Section: SectionEmployment, Type: TypeShortText,
			Prompt: "What is the occupation (SOC 2020) code on your Certificate of Sponsorship?",
			Placeholder: "e.g. 2134",
			Visible: full(skilled),
		},
		{
			ID: "sw_new_entrant", Section: SectionEmployment, Type: TypeBoolean,
			Prompt: "Do you qualify as a new entrant (under 26, recent graduate or trainee)?",
			Visible: full(skilled),
		},
		{
			ID: "sw_criminal_record_required", Section: SectionEmployment, Type: TypeBoolean,
			Prompt: "Does your occupation require a criminal record certificate?",
			Help: "Required for roles in education, health and social care.",
			Visible: full(skilled),
		},
		{
			ID: "sw_atas_required", Section: SectionEmployment, Type: TypeBoolean,
			Prompt: "Does your role require an ATAS certificate?",
			Help: "The Academic Technology Approval Scheme applies to some research roles.",
			Visible: full(skilled),
		},

		// Financial
		{
			ID: "sponsor_income", Section: SectionFinancial, Type: TypeCurrency,
			Prompt: "What is your sponsor's gross annual income?", Placeholder: "£",
			Help: "The minimum income requirement is £29,000.",
			Visible: basic(spouse),
		},
		{
			ID: "sw_salary", Section: SectionFinancial, Type: TypeCurrency,
			Prompt: "What gross annual salary does your Certificate of Sponsorship state?", Placeholder: "£",
			Visible: basic(skilled),
		},
		{
			ID: "sponsor_emp_type", Section: SectionFinancial, Type: TypeSingleChoice,
			Prompt: "How is your sponsor employed?",
			Options: opts(
				"paye", "Salaried (PAYE)",
				"self_employed", "Self-employed",
				"director", "Director of a limited company",
				"not_employed", "Not employed",
			),
			Visible: full(spouse),
		},
		{
			ID: "sponsor_employment_start", Section: SectionFinancial, Type: TypeDate,
			Prompt: "When did your sponsor start their current job?", Placeholder: "YYYY-MM-DD",
			Visible: full(spouse, equals("sponsor_emp_type", "paye")),
		},
		{
			ID: "cash_savings", Section: SectionFinancial, Type: TypeBoolean,
			Prompt: "Do you hold cash savings you could rely on?",
			Visible: full(),
		},
		{
			ID: "cash_savings_amt", Section: SectionFinancial, Type: TypeCurrency,
			Prompt: "How much do you hold in cash savings?", Placeholder: "£",
			Visible: full(isTrue("cash_savings")),
		},
		{
			ID: "savings_held_6_months", Section: SectionFinancial, Type: TypeBoolean,
			Prompt: "Have the savings been held for at least 6 months?",
			Visible: full(numberAbove("cash_savings_amt", 0)),
		},
		{
			ID: "sw_maintenance_certified", Section: SectionFinancial, Type: TypeBoolean,
			Prompt: "Will your sponsor certify maintenance on your Certificate of Sponsorship?",
			Visible: full(skilled),
		},
		{
			ID: "sw_dependants", Section: SectionFinancial, Type: TypeInteger,
			Prompt: "How many dependants will apply with you?",
			Visible: full(skilled),
		},

		// English language
		{
			ID: "english_test_passed", Section: SectionEnglish, Type: TypeBoolean,
			Prompt: "Have you passed an approved English language test (SELT)?",
			Visible: basic(),
		},
		{
			ID: "english_test_provider", Section: SectionEnglish, Type: TypeSingleChoice,
			Prompt: "Which provider did you test with?",
			Options: opts(
				"ielts_ukvi", "IELTS for UKVI",
				"pte_academic_ukvi", "PTE Academic UKVI",
				"languagecert", "LanguageCert",
				"trinity", "Trinity College London",
				"other", "Other",
			),
			Visible: full(isTrue("english_test_passed")),
		},
		{
			ID: "english_exempt_reason", Section: SectionEnglish, Type: TypeSingleChoice,
			Prompt: "Do any English language exemptions apply to you?",
			Options: opts(
				"majority_english_nationality", "National of a majority English-speaking country",
				"degree_taught_in_english", "Degree taught in English",
				"age_or_disability", "Aged 65+ or a disability",
				"none", "None of these",
			),
			Visible: full(isFalse("english_test_passed")),
		},

		// Immigration history
		{
			ID: "refusal_history", Section: SectionHistory, Type: TypeBoolean,
			Prompt: "Have you ever been refused a visa for any country?",
			Visible: basic(),
		},
		{
			ID: "refusal_details", Section: SectionHistory, Type: TypeLongText,
			Prompt: "Describe each refusal: country, date and reason given.",
			Visible: full(isTrue("refusal_history")),
		},
		{
			ID: "overstay_history", Section: SectionHistory, Type: TypeBoolean,
			Prompt: "Have you ever overstayed a visa or breached visa conditions?",
			Visible: basic(),
		},
		{
			ID: "overstay_days", Section: SectionHistory, Type: TypeInteger,
			Prompt: "How many days did you overstay in total?",
			Visible: full(isTrue("overstay_history")),
		},
		{
			ID: "current_uk_visa", Section: SectionHistory, Type: TypeSingleChoice,
			Prompt: "Do you currently hold UK immigration permission?",
			Options: opts(
				"none", "No, I am outside the UK",
				"visitor", "Visitor",
				"student", "Student or Graduate",
				"work", "Work visa",
				"other", "Other",
			),
			Visible: full(),
		},

		// Suitability
		{
			ID: "criminal_offence", Section: SectionSuitability, Type: TypeBoolean,
			Prompt: "Have you ever been convicted of a criminal offence in any country?",
			Visible: basic(),
		},
		{
			ID: "criminal_offence_details", Section: SectionSuitability, Type: TypeLongText,
			Prompt: "Give the offence, country, date and sentence.",
			Visible: full(isTrue("criminal_offence")),
		},
		{
			ID: "nhs_debt", Section: SectionSuitability, Type: TypeBoolean,
			Prompt: "Do you owe the NHS £500 or more for treatment?",
			Visible: basic(),
		},
		{
			ID: "nhs_debt_amount", Section: SectionSuitability, Type: TypeCurrency,
			Prompt: "How much do you owe the NHS?", Placeholder: "£",
			Visible: full(isTrue("nhs_debt")),
		},

		// Accommodation
		{
			ID: "accommodation_type", Section: SectionAccommodation, Type: TypeSingleChoice,
			Prompt: "Where will you live in the UK?",
			Options: opts(
				"owned", "Property we own",
				"rented", "Rented property",
				"family", "With family",
				"other", "Other",
			),
			Visible: full(spouse),
		},
		{
			ID: "accommodation_bedrooms", Section: SectionAccommodation, Type: TypeInteger,
			Prompt: "How many bedrooms does the property have?",
			Visible: proPlus(spouse, answered("accommodation_type")),
		},

		// Evidence detail
		{
			ID: "rel_evidence", Section: SectionEvidence, Type: TypeMultiChoice,
			Prompt: "Which relationship evidence can you provide?",
			Options: opts(
				"joint_bills", "Utility bills in both names",
				"photos", "Photographs together over time",
				"travel", "Travel records of visits",
				"correspondence", "Messages and call logs",
				"council_tax", "Council tax in both names",
				"birth_certificates", "Children's birth certificates",
			),
			Visible: proPlus(spouse),
		},
		{
			ID: "living_arrangement", Section: SectionEvidence, Type: TypeSingleChoice,
			Prompt: "Do you currently live together?",
			Options: opts(
				"together", "Yes, we live together",
				"apart", "No, we live apart",
			),
			Visible: proPlus(spouse),
		},
		{
			ID: "income_sources", Section: SectionEvidence, Type: TypeMultiChoice,
			Prompt: "Which sources make up the qualifying income?",
			Options: opts(
				"employment", "Salaried employment",
				"self_employed", "Self-employment",
				"pension", "Pension",
				"rental", "Rental income",
				"savings", "Cash savings",
				"other", "Other",
			),
			Visible: proPlus(),
		},
		{
			ID: "employment_length", Section: SectionEvidence, Type: TypeSingleChoice,
			Prompt: "How long has the main earner been with their current employer?",
			Options: opts(
				"under_6_months", "Less than 6 months",
				"6_to_12_months", "6 to 12 months",
				"over_12_months", "More than 12 months",
			),
			Visible: proPlus(),
		},
		{
			ID: "bank_statements_format", Section: SectionEvidence, Type: TypeSingleChoice,
			Prompt: "In what format will you provide bank statements?",
			Options: opts(
				"original", "Original paper statements",
				"bank_stamped", "Printouts stamped by the bank",
				"online_printouts", "Unstamped online printouts",
			),
			Visible: proPlus(),
		},
		{
			ID: "sw_salary_exact", Section: SectionEvidence, Type: TypeCurrency,
			Prompt: "What is the exact salary on your Certificate of Sponsorship?", Placeholder: "£",
			Visible: proPlus(skilled),
		},
		{
			ID: "sponsor_license", Section: SectionEvidence, Type: TypeSingleChoice,
			Prompt: "Does your employer hold a valid sponsor licence?",
			Options: opts(
				"yes", "Yes",
				"no", "No",
				"unsure", "Not sure",
			),
			Visible: proPlus(skilled),
		},
		{
			ID: "previous_refusals", Section: SectionEvidence, Type: TypeInteger,
			Prompt: "How many UK visa refusals have you had?",
			Visible: proPlus(isTrue("refusal_history")),
		},
		{
			ID: "overstays_detail", Section: SectionEvidence, Type: TypeLongText,
			Prompt: "Explain the circumstances of each overstay.",
			Visible: proPlus(isTrue("overstay_history")),
		},
		{
			ID: "uk_living_plan", Section: SectionEvidence, Type: TypeSingleChoice,
			Prompt: "What are your living arrangements on arrival?",
			Options: opts(
				"own_home", "Our own home",
				"rented", "A rented home",
				"with_family", "Staying with family",
				"not_arranged", "Not arranged yet",
			),
			Visible: proPlus(),
		},
	}
}
