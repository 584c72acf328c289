package assessment

// Defaults holds the presentation values Repair falls back to. They are data,
// not logic: callers may override any of them (see config).
type Defaults struct {
	// Backfill supplies single fields a parsed answer left absent or empty.
	Backfill HealthAssessment
	// FreeText is the object synthesized when the answer holds no usable JSON.
	// Its Diagnosis is only used when the answer text itself is blank.
	FreeText HealthAssessment
	// Outage is returned when generation failed outright.
	Outage HealthAssessment
	// Disclaimer is appended to DoctorVisit when no safety wording is present.
	Disclaimer string
}

// StandardDefaults returns a fresh copy of the stock defaults.
func StandardDefaults() Defaults {
	return Defaults{
		Backfill: HealthAssessment{
			Diagnosis:              "Unable to determine specific condition. General health guidance provided.",
			Urgency:                UrgencyMedium,
			Confidence:             75,
			Recommendations:        StringList{"Consult healthcare provider"},
			HomeRemedies:           StringList{"Rest and stay hydrated"},
			DoctorVisit:            "Seek medical attention if symptoms persist or worsen",
			RuralSpecificAdvice:    StringList{"Contact nearest community health center"},
			PreventiveCare:         StringList{"Maintain good hygiene practices"},
			CulturalConsiderations: StringList{"Follow safe traditional practices alongside modern care"},
		},
		FreeText: HealthAssessment{
			Diagnosis:  "Unable to determine specific condition. General health guidance provided.",
			Urgency:    UrgencyMedium,
			Confidence: 70,
			Recommendations: StringList{
				"Monitor symptoms closely",
				"Rest and stay hydrated",
				"Seek medical attention if symptoms worsen",
			},
			HomeRemedies: StringList{
				"Get adequate rest",
				"Maintain proper hydration",
				"Eat nutritious foods if appetite allows",
			},
			DoctorVisit: "Consult a healthcare professional if symptoms persist for more than 2-3 days or if you experience severe symptoms",
			RuralSpecificAdvice: StringList{
				"Contact your nearest community health worker",
				"If transportation is an issue, call local health services for guidance",
				"Keep emergency contact numbers readily available",
			},
			PreventiveCare: StringList{
				"Maintain good personal hygiene",
				"Eat a balanced diet with locally available nutritious foods",
				"Stay physically active within your capabilities",
			},
			CulturalConsiderations: StringList{
				"Combine traditional wisdom with modern healthcare practices safely",
				"Consult with community elders about traditional remedies while seeking medical advice",
			},
		},
		Outage: HealthAssessment{
			Diagnosis:  "I'm experiencing technical difficulties analyzing your symptoms. This doesn't mean your concerns aren't valid.",
			Urgency:    UrgencyMedium,
			Confidence: 50,
			Recommendations: StringList{
				"Document your symptoms (when they started, severity, changes)",
				"Rest and stay hydrated",
				"Monitor for any worsening of symptoms",
			},
			HomeRemedies: StringList{
				"Get plenty of rest",
				"Drink clean water regularly",
				"Eat light, easily digestible foods",
			},
			DoctorVisit: "Since I cannot properly analyze your symptoms right now, please consult with a healthcare professional, community health worker, or call a medical helpline for proper guidance.",
			RuralSpecificAdvice: StringList{
				"Contact your nearest Primary Health Center (PHC) or Community Health Center (CHC)",
				"Reach out to ASHA workers or ANM in your area",
				"Use telemedicine services if available in your region",
				"Call national health helplines for immediate guidance",
			},
			PreventiveCare: StringList{
				"Maintain regular health check-ups when possible",
				"Keep a basic first aid kit at home",
				"Stay informed about common health issues in your area",
			},
			CulturalConsiderations: StringList{
				"Seek advice from trusted community health advocates",
				"Balance traditional practices with modern medical advice safely",
			},
		},
		Disclaimer: "Always consult healthcare professionals for proper medical care.",
	}
}

// Outage returns the stock assessment used when generation is unreachable.
func Outage() HealthAssessment {
	return StandardDefaults().Outage
}
