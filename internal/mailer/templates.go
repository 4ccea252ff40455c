package mailer

import (
	"bytes"
	"text/template"
	"time"

	"github.com/senelec/reclamations-api/internal/domain"
)

// CredentialsSubject is the subject of onboarding emails.
const CredentialsSubject = "Vos informations de connexion - Système SENELEC"

// ResolutionSubject is the subject of complaint closure notices.
const ResolutionSubject = "Mise à jour de votre réclamation - Système SENELEC"

var credentialsTmpl = template.Must(template.New("credentials").Parse(`Bonjour {{.FullName}},

Voici vos informations de connexion au système SENELEC :

Email : {{.Email}}
Mot de passe temporaire : {{.TempPassword}}
Rôle : {{.RoleLabel}}

Veuillez vous connecter et modifier votre mot de passe lors de votre première connexion.

Cordialement,
L'équipe SENELEC
`))

var resolutionTmpl = template.Must(template.New("resolution").Parse(`Bonjour {{.FullName}},

Votre réclamation du {{.CreatedAt}} est désormais au statut « {{.StatusLabel}} ».
{{- if .ResponseAt}}
Date de réponse : {{.ResponseAt}}
{{- end}}

Cordialement,
L'équipe SENELEC
`))

// Credentials renders the onboarding email for account.
func Credentials(account *domain.Account, tempPassword string) (Message, error) {
	var buf bytes.Buffer
	err := credentialsTmpl.Execute(&buf, map[string]string{
		"FullName":     account.FullName(),
		"Email":        account.Email,
		"TempPassword": tempPassword,
		"RoleLabel":    account.Role.Label(),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: account.Email, Subject: CredentialsSubject, Body: buf.String()}, nil
}

// Resolution renders the notice sent to a client when their complaint closes.
func Resolution(account *domain.Account, ticket *domain.Ticket) (Message, error) {
	const layout = "02/01/2006 15:04"
	data := map[string]string{
		"FullName":    account.FullName(),
		"CreatedAt":   ticket.CreatedAt.Format(layout),
		"StatusLabel": ticket.Status.Label(),
	}
	if ticket.ResponseAt != nil {
		data["ResponseAt"] = ticket.ResponseAt.In(time.UTC).Format(layout)
	}
	var buf bytes.Buffer
	if err := resolutionTmpl.Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{To: account.Email, Subject: ResolutionSubject, Body: buf.String()}, nil
}
