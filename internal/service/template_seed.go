package service

import "github.com/ouerghi-selim/merelformation-api/internal/models"

// customMessageBlock is the conditional administrator free-text section
// appended to every seeded body. The renderer drops the whole block when no
// message accompanies the transition.
const customMessageBlock = `{{#customMessage}}<div style="background-color:#ebf4ff;padding:15px;border-radius:5px;margin:15px 0;border-left:4px solid #3182ce;"><p><strong>Message de l'&eacute;quipe :</strong></p><p>{{customMessage}}</p></div>{{/customMessage}}`

const signature = `<p>Cordialement,<br>L'&eacute;quipe MerelFormation</p>`

// SeedTemplates returns the built-in notification templates, one per
// workflow/status/role combination plus the generic per-role fallbacks.
// They replace the seed fixtures the legacy platform loaded into its
// email_templates table.
func SeedTemplates() []models.EmailTemplate {
	student := models.RoleRecipientStudent
	admin := models.RoleRecipientAdmin

	templates := []models.EmailTemplate{
		// Generic fallbacks, used when a transition has no dedicated template.
		{
			Key:       models.FallbackTemplateKey(student),
			Name:      "Changement de statut (générique, élève)",
			Role:      student,
			Subject:   "Mise à jour de votre dossier",
			Body:      `<p>Bonjour {{studentName}},</p><p>Le statut de votre dossier est maintenant : <strong>{{statusLabel}}</strong>.</p>` + customMessageBlock + signature,
			Variables: []string{"studentName", "statusLabel", "customMessage"},
		},
		{
			Key:       models.FallbackTemplateKey(admin),
			Name:      "Changement de statut (générique, admin)",
			Role:      admin,
			Subject:   "Dossier {{entityId}} : {{statusLabel}}",
			Body:      `<p>Le dossier {{entityId}} est pass&eacute; au statut <strong>{{statusLabel}}</strong>.</p>` + customMessageBlock,
			Variables: []string{"entityId", "statusLabel", "customMessage"},
		},
	}

	templates = append(templates, enrollmentStudentTemplates()...)
	templates = append(templates, rentalStudentTemplates()...)
	templates = append(templates, adminTemplates()...)
	return templates
}

func enrollmentStudentTemplates() []models.EmailTemplate {
	student := models.RoleRecipientStudent
	type seed struct {
		status    models.Status
		name      string
		subject   string
		body      string
		variables []string
	}
	seeds := []seed{
		{
			models.StatusSubmitted,
			"Demande d'inscription soumise",
			"✅ Votre demande d'inscription a été soumise",
			`<p>Bonjour {{studentName}},</p><p>Votre demande d'inscription &agrave; <strong>{{formationTitle}}</strong> a bien &eacute;t&eacute; soumise le {{submissionDate}}.</p><ul><li>Session : {{sessionDate}}</li><li>Num&eacute;ro de demande : {{reservationId}}</li></ul><p>Notre &eacute;quipe va l'examiner sous 24 &agrave; 48h ouvr&eacute;es.</p>`,
			[]string{"studentName", "formationTitle", "sessionDate", "reservationId", "submissionDate", "customMessage"},
		},
		{
			models.StatusUnderReview,
			"Demande en cours d'examen",
			"🔍 Votre demande est en cours d'examen",
			`<p>Bonjour {{studentName}},</p><p>Votre demande d'inscription pour <strong>{{formationTitle}}</strong> est en cours d'examen par notre &eacute;quipe p&eacute;dagogique.</p><p>Vous serez inform&eacute;(e) du r&eacute;sultat dans les plus brefs d&eacute;lais.</p>`,
			[]string{"studentName", "formationTitle", "reservationId", "customMessage"},
		},
		{
			models.StatusAwaitingDocuments,
			"En attente de documents",
			"📄 Documents requis pour votre inscription",
			`<p>Bonjour {{studentName}},</p><p>Pour finaliser votre inscription &agrave; <strong>{{formationTitle}}</strong>, merci de d&eacute;poser vos justificatifs depuis votre espace personnel.</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
		{
			models.StatusDocumentsPending,
			"Documents en cours de validation",
			"⏳ Vos documents sont en cours de validation",
			`<p>Bonjour {{studentName}},</p><p>Vos documents ont bien &eacute;t&eacute; re&ccedil;us et sont en cours de v&eacute;rification par notre &eacute;quipe administrative.</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
		{
			models.StatusDocumentsRejected,
			"Documents refusés",
			"❌ Vos documents nécessitent une correction",
			`<p>Bonjour {{studentName}},</p><p>Certains de vos documents n'ont pas pu &ecirc;tre valid&eacute;s. Merci de d&eacute;poser de nouveaux justificatifs depuis votre espace personnel.</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
		{
			models.StatusAwaitingPrerequisites,
			"En attente de prérequis",
			"📋 Prérequis à compléter",
			`<p>Bonjour {{studentName}},</p><p>Votre inscription &agrave; <strong>{{formationTitle}}</strong> est en attente des pr&eacute;requis n&eacute;cessaires.</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
		{
			models.StatusAwaitingFunding,
			"En attente de financement",
			"💶 Dossier de financement en attente",
			`<p>Bonjour {{studentName}},</p><p>Votre dossier de financement pour <strong>{{formationTitle}}</strong> est en attente de validation par l'organisme financeur.</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
		{
			models.StatusFundingApproved,
			"Financement approuvé",
			"✅ Votre financement est approuvé",
			`<p>Bonjour {{studentName}},</p><p>Bonne nouvelle : le financement de votre formation <strong>{{formationTitle}}</strong> a &eacute;t&eacute; approuv&eacute;.</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
		{
			models.StatusAwaitingPayment,
			"En attente de paiement",
			"💳 Paiement attendu pour votre inscription",
			`<p>Bonjour {{studentName}},</p><p>Pour confirmer votre inscription &agrave; <strong>{{formationTitle}}</strong>, un r&egrave;glement de {{price}} est attendu.</p>`,
			[]string{"studentName", "formationTitle", "price", "customMessage"},
		},
		{
			models.StatusPaymentPending,
			"Paiement en cours",
			"⏳ Votre paiement est en cours de traitement",
			`<p>Bonjour {{studentName}},</p><p>Votre paiement pour <strong>{{formationTitle}}</strong> est en cours de traitement. Vous recevrez une confirmation d&egrave;s sa validation.</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
		{
			models.StatusConfirmed,
			"Inscription confirmée",
			"🎉 Votre inscription est confirmée",
			`<p>Bonjour {{studentName}},</p><p>Votre inscription &agrave; <strong>{{formationTitle}}</strong> est confirm&eacute;e !</p><ul><li>D&eacute;but de session : {{sessionDate}}</li><li>Lieu : {{location}}</li></ul>`,
			[]string{"studentName", "formationTitle", "sessionDate", "location", "customMessage"},
		},
		{
			models.StatusAwaitingStart,
			"En attente du début",
			"🗓 Votre formation démarre bientôt",
			`<p>Bonjour {{studentName}},</p><p>Votre formation <strong>{{formationTitle}}</strong> d&eacute;marre le {{sessionDate}} &agrave; {{location}}.</p>`,
			[]string{"studentName", "formationTitle", "sessionDate", "location", "customMessage"},
		},
		{
			models.StatusInProgress,
			"Formation en cours",
			"🚀 Votre formation a démarré",
			`<p>Bonjour {{studentName}},</p><p>Votre formation <strong>{{formationTitle}}</strong> est maintenant en cours. Bonne formation !</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
		{
			models.StatusAttendanceIssues,
			"Problèmes d'assiduité",
			"⚠️ Assiduité : un point est nécessaire",
			`<p>Bonjour {{studentName}},</p><p>Nous avons relev&eacute; des absences sur votre formation <strong>{{formationTitle}}</strong>. Merci de prendre contact avec votre r&eacute;f&eacute;rent.</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
		{
			models.StatusSuspended,
			"Inscription suspendue",
			"⏸ Votre inscription est suspendue",
			`<p>Bonjour {{studentName}},</p><p>Votre inscription &agrave; <strong>{{formationTitle}}</strong> est temporairement suspendue.</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
		{
			models.StatusCompleted,
			"Formation terminée",
			"🎓 Félicitations, formation terminée",
			`<p>Bonjour {{studentName}},</p><p>F&eacute;licitations, vous avez termin&eacute; la formation <strong>{{formationTitle}}</strong> !</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
		{
			models.StatusFailed,
			"Échec de formation",
			"Votre formation n'a pas pu être validée",
			`<p>Bonjour {{studentName}},</p><p>Votre formation <strong>{{formationTitle}}</strong> n'a malheureusement pas pu &ecirc;tre valid&eacute;e. Notre &eacute;quipe reste &agrave; votre disposition.</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
		{
			models.StatusCancelled,
			"Inscription annulée",
			"Votre inscription a été annulée",
			`<p>Bonjour {{studentName}},</p><p>Votre inscription &agrave; <strong>{{formationTitle}}</strong> a &eacute;t&eacute; annul&eacute;e.</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
		{
			models.StatusRefunded,
			"Remboursement effectué",
			"💶 Votre remboursement a été effectué",
			`<p>Bonjour {{studentName}},</p><p>Le remboursement li&eacute; &agrave; votre inscription <strong>{{formationTitle}}</strong> a &eacute;t&eacute; effectu&eacute;.</p>`,
			[]string{"studentName", "formationTitle", "customMessage"},
		},
	}

	templates := make([]models.EmailTemplate, 0, len(seeds))
	for _, s := range seeds {
		templates = append(templates, models.EmailTemplate{
			Key:       models.TemplateKey(models.WorkflowEnrollment, s.status, student),
			Name:      s.name + " (élève)",
			Role:      student,
			Subject:   s.subject,
			Body:      s.body + customMessageBlock + signature,
			Variables: s.variables,
		})
	}
	return templates
}

func rentalStudentTemplates() []models.EmailTemplate {
	student := models.RoleRecipientStudent
	type seed struct {
		status    models.Status
		name      string
		subject   string
		body      string
		variables []string
	}
	seeds := []seed{
		{
			models.StatusSubmitted,
			"Demande de location soumise",
			"✅ Votre demande de location a été soumise",
			`<p>Bonjour {{studentName}},</p><p>Votre demande de location du v&eacute;hicule <strong>{{vehicleModel}}</strong> a bien &eacute;t&eacute; soumise le {{submissionDate}}.</p><ul><li>Centre d'examen : {{examCenter}}</li><li>P&eacute;riode : {{rentalDates}}</li><li>Num&eacute;ro de demande : {{rentalId}}</li></ul>`,
			[]string{"studentName", "vehicleModel", "examCenter", "rentalDates", "rentalId", "submissionDate", "customMessage"},
		},
		{
			models.StatusUnderReview,
			"Location en cours d'examen",
			"🔍 Votre demande de location est en cours d'examen",
			`<p>Bonjour {{studentName}},</p><p>Votre demande de location ({{vehicleModel}}, {{rentalDates}}) est en cours d'examen.</p>`,
			[]string{"studentName", "vehicleModel", "rentalDates", "customMessage"},
		},
		{
			models.StatusAwaitingDocuments,
			"Location : documents requis",
			"📄 Documents requis pour votre location",
			`<p>Bonjour {{studentName}},</p><p>Pour confirmer votre location pour le centre d'examen de {{examCenter}}, merci de d&eacute;poser vos justificatifs.</p>`,
			[]string{"studentName", "examCenter", "customMessage"},
		},
		{
			models.StatusDocumentsPending,
			"Location : documents en validation",
			"⏳ Vos documents sont en cours de validation",
			`<p>Bonjour {{studentName}},</p><p>Vos documents pour la location ont bien &eacute;t&eacute; re&ccedil;us et sont en cours de v&eacute;rification.</p>`,
			[]string{"studentName", "examCenter", "customMessage"},
		},
		{
			models.StatusDocumentsRejected,
			"Location : documents refusés",
			"❌ Vos documents nécessitent une correction",
			`<p>Bonjour {{studentName}},</p><p>Certains documents de votre dossier de location n'ont pas pu &ecirc;tre valid&eacute;s. Merci de d&eacute;poser de nouveaux justificatifs.</p>`,
			[]string{"studentName", "customMessage"},
		},
		{
			models.StatusAwaitingPayment,
			"Location : en attente de paiement",
			"💳 Paiement attendu pour votre location",
			`<p>Bonjour {{studentName}},</p><p>Pour confirmer votre location ({{vehicleModel}}, {{rentalDates}}), un r&egrave;glement de {{totalPrice}} est attendu.</p>`,
			[]string{"studentName", "vehicleModel", "rentalDates", "totalPrice", "customMessage"},
		},
		{
			models.StatusPaymentPending,
			"Location : paiement en cours",
			"⏳ Votre paiement est en cours de traitement",
			`<p>Bonjour {{studentName}},</p><p>Votre paiement pour la location est en cours de traitement.</p>`,
			[]string{"studentName", "customMessage"},
		},
		{
			models.StatusConfirmed,
			"Location confirmée",
			"🎉 Votre location est confirmée",
			`<p>Bonjour {{studentName}},</p><p>Votre location est confirm&eacute;e !</p><ul><li>V&eacute;hicule : {{vehicleModel}} ({{vehiclePlate}})</li><li>Centre d'examen : {{examCenter}}</li><li>Retrait : {{pickupLocation}}</li><li>P&eacute;riode : {{rentalDates}}</li></ul>`,
			[]string{"studentName", "vehicleModel", "vehiclePlate", "examCenter", "pickupLocation", "rentalDates", "customMessage"},
		},
		{
			models.StatusInProgress,
			"Location en cours",
			"🚗 Votre location a démarré",
			`<p>Bonjour {{studentName}},</p><p>Votre location du v&eacute;hicule <strong>{{vehicleModel}}</strong> ({{vehiclePlate}}) a d&eacute;marr&eacute;. Retour pr&eacute;vu : {{returnDate}}.</p>`,
			[]string{"studentName", "vehicleModel", "vehiclePlate", "returnDate", "customMessage"},
		},
		{
			models.StatusCompleted,
			"Location terminée",
			"✅ Votre location est terminée",
			`<p>Bonjour {{studentName}},</p><p>Votre location du v&eacute;hicule <strong>{{vehicleModel}}</strong> est termin&eacute;e. Merci de votre confiance !</p>`,
			[]string{"studentName", "vehicleModel", "customMessage"},
		},
		{
			models.StatusCancelled,
			"Location annulée",
			"Votre location a été annulée",
			`<p>Bonjour {{studentName}},</p><p>Votre location ({{vehicleModel}}, {{rentalDates}}) a &eacute;t&eacute; annul&eacute;e.</p>`,
			[]string{"studentName", "vehicleModel", "rentalDates", "customMessage"},
		},
		{
			models.StatusRefunded,
			"Location remboursée",
			"💶 Votre remboursement a été effectué",
			`<p>Bonjour {{studentName}},</p><p>Le remboursement li&eacute; &agrave; votre location a &eacute;t&eacute; effectu&eacute;.</p>`,
			[]string{"studentName", "customMessage"},
		},
	}

	templates := make([]models.EmailTemplate, 0, len(seeds))
	for _, s := range seeds {
		templates = append(templates, models.EmailTemplate{
			Key:       models.TemplateKey(models.WorkflowRental, s.status, student),
			Name:      s.name + " (élève)",
			Role:      student,
			Subject:   s.subject,
			Body:      s.body + customMessageBlock + signature,
			Variables: s.variables,
		})
	}
	return templates
}

// adminTemplates notify the back office about transitions that demand an
// action on their side. The remaining admin notifications go through the
// generic fallback.
func adminTemplates() []models.EmailTemplate {
	admin := models.RoleRecipientAdmin
	return []models.EmailTemplate{
		{
			Key:       models.TemplateKey(models.WorkflowEnrollment, models.StatusSubmitted, admin),
			Name:      "Nouvelle demande d'inscription (admin)",
			Role:      admin,
			Subject:   "Nouvelle demande d'inscription : {{formationTitle}}",
			Body:      `<p>Une nouvelle demande d'inscription a &eacute;t&eacute; soumise.</p><ul><li>&Eacute;l&egrave;ve : {{studentName}}</li><li>Formation : {{formationTitle}}</li><li>Num&eacute;ro : {{reservationId}}</li></ul>` + customMessageBlock,
			Variables: []string{"studentName", "formationTitle", "reservationId", "customMessage"},
		},
		{
			Key:       models.TemplateKey(models.WorkflowEnrollment, models.StatusDocumentsPending, admin),
			Name:      "Documents à valider (admin)",
			Role:      admin,
			Subject:   "Documents à valider : {{studentName}}",
			Body:      `<p>Des documents sont en attente de validation pour la demande {{reservationId}} ({{studentName}}).</p>` + customMessageBlock,
			Variables: []string{"studentName", "reservationId", "customMessage"},
		},
		{
			Key:       models.TemplateKey(models.WorkflowRental, models.StatusSubmitted, admin),
			Name:      "Nouvelle demande de location (admin)",
			Role:      admin,
			Subject:   "Nouvelle demande de location : {{vehicleModel}}",
			Body:      `<p>Une nouvelle demande de location a &eacute;t&eacute; soumise.</p><ul><li>Client : {{studentName}}</li><li>V&eacute;hicule : {{vehicleModel}}</li><li>P&eacute;riode : {{rentalDates}}</li><li>Num&eacute;ro : {{rentalId}}</li></ul>` + customMessageBlock,
			Variables: []string{"studentName", "vehicleModel", "rentalDates", "rentalId", "customMessage"},
		},
		{
			Key:       models.TemplateKey(models.WorkflowRental, models.StatusDocumentsPending, admin),
			Name:      "Documents de location à valider (admin)",
			Role:      admin,
			Subject:   "Documents à valider : location {{rentalId}}",
			Body:      `<p>Des documents sont en attente de validation pour la location {{rentalId}} ({{studentName}}).</p>` + customMessageBlock,
			Variables: []string{"studentName", "rentalId", "customMessage"},
		},
	}
}
