// Package generator produces social-media post copy from a small set of
// enumerated post types and tones. Generation is deterministic template
// interpolation; there is no model behind it.
package generator

import (
	"errors"
	"fmt"
	"strings"
)

type PostType string

const (
	TypePromotion PostType = "promoção"
	TypeNews      PostType = "notícia"
	TypeEvent     PostType = "evento"
)

type Tone string

const (
	ToneCasual Tone = "descontraído"
	ToneFormal Tone = "formal"
)

// Request describes one generation. Product, Event, Deadline and Link are
// optional and only meaningful for certain post types; see FieldVisible.
type Request struct {
	PostType PostType
	Tone     Tone
	Product  string
	Event    string
	Deadline string
	Link     string
}

var (
	ErrMissingPostType = errors.New("post type is required")
	ErrMissingTone     = errors.New("tone is required")
)

// UnknownValueError reports a post type or tone outside the enumerated set.
type UnknownValueError struct {
	Field string
	Value string
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Field, e.Value)
}

// ReviseSuffix is appended by Revise, once per call.
const ReviseSuffix = "\n\n✨ Texto revisado e otimizado para melhor engajamento!"

// Validate checks that the request names a known post type and tone.
// It runs before generation; an invalid request never reaches a template.
func Validate(req Request) error {
	if req.PostType == "" {
		return ErrMissingPostType
	}
	if req.Tone == "" {
		return ErrMissingTone
	}
	switch req.PostType {
	case TypePromotion, TypeNews, TypeEvent:
	default:
		return &UnknownValueError{Field: "post type", Value: string(req.PostType)}
	}
	switch req.Tone {
	case ToneCasual, ToneFormal:
	default:
		return &UnknownValueError{Field: "tone", Value: string(req.Tone)}
	}
	return nil
}

// Generate renders the fixed template for the request's (post type, tone)
// pair, substituting the optional fields and falling back to generic
// phrases where they are empty.
func Generate(req Request) (string, error) {
	if err := Validate(req); err != nil {
		return "", err
	}
	switch req.PostType {
	case TypePromotion:
		return promotion(req), nil
	case TypeNews:
		return news(req), nil
	default:
		return event(req), nil
	}
}

func promotion(req Request) string {
	if req.Tone == ToneCasual {
		product := "Produto incrível"
		if req.Product != "" {
			product = "Nosso " + req.Product
		}
		deadline := "⏰ Por tempo limitado"
		if req.Deadline != "" {
			deadline = "⏰ Apenas até " + req.Deadline
		}
		return "🔥 PROMOÇÃO IMPERDÍVEL! 🔥\n\n" + product + " está com desconto especial! 🎉\n\n" +
			deadline + "\n\nNão deixe essa oportunidade passar! 💫\n\n#promoção #oferta #desconto"
	}
	product := "Produto selecionado"
	if req.Product != "" {
		product = req.Product
	}
	deadline := "Oferta por tempo limitado."
	if req.Deadline != "" {
		deadline = "Válido até " + req.Deadline + "."
	}
	return "Oferta Especial Disponível\n\n" + product + " com condições especiais.\n\n" +
		deadline + "\n\nAproveite esta oportunidade única.\n\n#oferta #promoção #qualidade"
}

func news(req Request) string {
	if req.Tone == ToneCasual {
		event := "Algo incrível está acontecendo"
		if req.Event != "" {
			event = req.Event
		}
		link := "Em breve mais detalhes!"
		if req.Link != "" {
			link = "Saiba mais: " + req.Link
		}
		return "📰 NOVIDADES CHEGANDO! 📰\n\n" + event + " e queremos compartilhar com vocês! 🎊\n\n" +
			link + "\n\nFiquem ligados! ✨\n\n#novidades #news #acontecendo"
	}
	event := "Informação importante para compartilhar."
	if req.Event != "" {
		event = req.Event
	}
	link := "Detalhes em breve."
	if req.Link != "" {
		link = "Mais informações: " + req.Link
	}
	return "Comunicado Oficial\n\n" + event + "\n\n" + link +
		"\n\nAcompanhem nossas atualizações.\n\n#comunicado #informação #oficial"
}

func event(req Request) string {
	if req.Tone == ToneCasual {
		name := "Evento incrível"
		if req.Event != "" {
			name = req.Event
		}
		date := "📅 Em breve a data!"
		if req.Deadline != "" {
			date = "📅 Data: " + req.Deadline
		}
		return "🎉 EVENTO IMPERDÍVEL! 🎉\n\n" + name + " está chegando e vocês estão convidados! 🎊\n\n" +
			date + "\n\nVem com a gente! 🚀\n\n#evento #convite #diversão"
	}
	name := "Evento especial"
	if req.Event != "" {
		name = req.Event
	}
	date := "Data a ser confirmada."
	if req.Deadline != "" {
		date = "Data: " + req.Deadline
	}
	return "Convite para Evento\n\n" + name + " - sua presença é importante.\n\n" +
		date + "\n\nContamos com sua participação.\n\n#evento #convite #participação"
}

// Revise appends the fixed revision suffix to text. It is a one-shot
// manual action: calling it on already revised text appends again.
func Revise(text string) string {
	return text + ReviseSuffix
}

// Prompt renders the human-readable summary of a request that is stored
// alongside the generated content.
func Prompt(req Request) string {
	var b strings.Builder
	b.WriteString("Tipo: ")
	b.WriteString(string(req.PostType))
	b.WriteString(", Tom: ")
	b.WriteString(string(req.Tone))
	if req.Product != "" {
		b.WriteString(", Produto: " + req.Product)
	}
	if req.Event != "" {
		b.WriteString(", Evento: " + req.Event)
	}
	if req.Deadline != "" {
		b.WriteString(", Data: " + req.Deadline)
	}
	if req.Link != "" {
		b.WriteString(", Link: " + req.Link)
	}
	return b.String()
}

// FieldVisible reports whether an optional form field applies to the
// given post type.
//
//	product  -> promoção
//	event    -> notícia, evento
//	deadline -> promoção, evento
//	link     -> notícia
func FieldVisible(postType PostType, field string) bool {
	switch field {
	case "product":
		return postType == TypePromotion
	case "event":
		return postType == TypeNews || postType == TypeEvent
	case "deadline":
		return postType == TypePromotion || postType == TypeEvent
	case "link":
		return postType == TypeNews
	default:
		return false
	}
}
