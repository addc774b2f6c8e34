package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	MsgRequired = "Tous les champs sont requis."
	MsgEmail    = "Format d'email invalide."
	MsgUsername = "Le pseudo doit contenir entre 3 et 30 caractères (lettres, chiffres, underscore, tiret uniquement)."
	MsgRating   = "La note doit être comprise entre 1 et 5."
	MsgBody     = "Requête invalide."
)

var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)

var registerOnce sync.Once

// Register installs the custom tags on gin's validator engine. Safe to call many times.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("unexpected gin validator engine")
			return
		}
		err = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return UsernamePattern.MatchString(fl.Field().String())
		})
	})
	return err
}

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		seen := make(map[string]bool)
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			if seen[message] {
				continue
			}
			seen[message] = true
			messages = append(messages, message)
		}
		return strings.Join(messages, " ")
	}
	return MsgBody
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())
	isString := fe.Kind().String() == "string"

	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return MsgEmail
	case "username":
		return MsgUsername
	case "min", "max", "gte", "lte":
		if fe.Field() == "Rating" || fe.Field() == "UserRating" {
			return MsgRating
		}
		if isString {
			if fe.Tag() == "min" || fe.Tag() == "gte" {
				return fmt.Sprintf("%s doit contenir au moins %s caractères.", field, fe.Param())
			}
			return fmt.Sprintf("%s ne doit pas dépasser %s caractères.", field, fe.Param())
		}
		if fe.Tag() == "min" || fe.Tag() == "gte" {
			return fmt.Sprintf("%s doit être supérieur ou égal à %s.", field, fe.Param())
		}
		return fmt.Sprintf("%s doit être inférieur ou égal à %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s invalide. Valeurs acceptées : %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s invalide.", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Username":   "Le pseudo",
		"Email":      "L'email",
		"Password":   "Le mot de passe",
		"Bio":        "La bio",
		"Title":      "Le titre",
		"Content":    "Le contenu",
		"Status":     "Le statut",
		"TargetType": "Le type de contenu",
		"TargetID":   "L'identifiant du contenu",
		"GameID":     "L'identifiant du jeu",
		"RawgID":     "L'identifiant du jeu",
		"Limit":      "La limite",
		"Offset":     "Le décalage",
		"Page":       "La page",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
