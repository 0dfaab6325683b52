package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Ferdinando4570/content-forge-magic/internal/generator"
	"github.com/Ferdinando4570/content-forge-magic/internal/models"
)

func requestFromForm(r *http.Request) generator.Request {
	return generator.Request{
		PostType: generator.PostType(r.FormValue("tipo")),
		Tone:     generator.Tone(r.FormValue("tom")),
		Product:  r.FormValue("produto"),
		Event:    r.FormValue("evento"),
		Deadline: r.FormValue("data_limite"),
		Link:     r.FormValue("link"),
	}
}

// fieldVisibility drives the conditional inputs on the generator form.
func fieldVisibility(postType generator.PostType) map[string]bool {
	return map[string]bool{
		"Product":  generator.FieldVisible(postType, "product"),
		"Event":    generator.FieldVisible(postType, "event"),
		"Deadline": generator.FieldVisible(postType, "deadline"),
		"Link":     generator.FieldVisible(postType, "link"),
	}
}

func (s *Server) indexData(user *models.User, req generator.Request) map[string]any {
	return map[string]any{
		"User":      user,
		"Form":      req,
		"Show":      fieldVisibility(req.PostType),
		"Generated": "",
		"Revised":   "",
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(r)
	s.render(w, r, "index", s.indexData(user, generator.Request{}))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(r)
	req := requestFromForm(r)
	data := s.indexData(user, req)

	text, err := generator.Generate(req)
	if err != nil {
		var unknown *generator.UnknownValueError
		switch {
		case errors.Is(err, generator.ErrMissingPostType), errors.Is(err, generator.ErrMissingTone):
			data["Flash"] = "Por favor, selecione o tipo de post e o tom de voz."
		case errors.As(err, &unknown):
			data["Flash"] = "Tipo de post ou tom de voz inválido."
		default:
			data["Flash"] = "Não foi possível gerar o post."
		}
		s.log.Warn("generate rejected", zap.Error(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "index", data)
		return
	}
	data["Generated"] = text

	// boundary side effect: persist for signed-in users, then refetch
	if user != nil {
		sy := s.sync(user)
		if err := sy.Save(r.Context(), text, string(req.PostType), generator.Prompt(req)); err == nil {
			data["Flash"] = "Post gerado com sucesso! Seu post foi criado e salvo no histórico."
		} else {
			data["Flash"] = s.popNotice(user)
		}
	} else {
		data["Flash"] = "Post gerado com sucesso! Faça login para salvar no histórico."
	}
	s.render(w, r, "index", data)
}

func (s *Server) handleRevise(w http.ResponseWriter, r *http.Request) {
	user := s.currentUser(r)
	req := requestFromForm(r)
	data := s.indexData(user, req)

	text := r.FormValue("texto_gerado")
	if text == "" {
		data["Flash"] = "Gere um post primeiro para poder revisá-lo."
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "index", data)
		return
	}
	data["Generated"] = text
	data["Revised"] = generator.Revise(text)
	data["Flash"] = "Texto revisado e otimizado."
	s.render(w, r, "index", data)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, user *models.User) {
	sy := s.sync(user)
	flash := s.popFlash(w, r)
	if err := sy.Load(r.Context()); err != nil && flash == "" {
		flash = s.popNotice(user)
	}
	s.render(w, r, "dashboard", map[string]any{
		"User":  user,
		"Posts": sy.Posts(),
		"Flash": flash,
	})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, user *models.User) {
	id := r.FormValue("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	sy := s.sync(user)
	if err := sy.Remove(r.Context(), id); err != nil {
		s.setFlash(w, s.popNotice(user))
	} else {
		s.setFlash(w, "Post removido do histórico.")
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
