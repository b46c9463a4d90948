// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	relaierrors "github.com/sirseerhq/sirseer-prcount/internal/errors"
	"github.com/sirseerhq/sirseer-prcount/internal/github"
)

// countQuery is the query string of every count route. GitHub logins are at
// most 39 characters and repository names at most 100.
type countQuery struct {
	Owner string `form:"owner" validate:"required,max=39,github_name"`
	Repo  string `form:"repo" validate:"required,max=100,github_name"`
}

var githubNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

type validatorSvc struct {
	validate   *validator.Validate
	translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *validatorSvc
)

// queryValidator returns the validator singleton with English messages and
// form tag names.
func queryValidator() *validatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if tag := fld.Tag.Get("form"); tag != "" && tag != "-" {
				return tag
			}
			return fld.Name
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation("github_name", func(fl validator.FieldLevel) bool {
			return githubNamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterTranslation("github_name", trans,
			func(ut ut.Translator) error {
				return ut.Add("github_name", "{0} may only contain letters, digits, '.', '_' and '-'", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, _ := ut.T("github_name", fe.Field())
				return msg
			},
		)

		vSvc = &validatorSvc{validate: v, translator: trans}
	})
	return vSvc
}

// bindCountQuery reads and validates owner and repo. Failures wrap
// ErrInvalidRepository so they map to 400.
func bindCountQuery(r *http.Request) (github.RepositoryRef, error) {
	q := r.URL.Query()
	in := countQuery{
		Owner: strings.TrimSpace(q.Get("owner")),
		Repo:  strings.TrimSpace(q.Get("repo")),
	}

	svc := queryValidator()
	if err := svc.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fe.Translate(svc.translator))
			}
			return github.RepositoryRef{}, fmt.Errorf("%s: %w", strings.Join(msgs, "; "), relaierrors.ErrInvalidRepository)
		}
		return github.RepositoryRef{}, fmt.Errorf("invalid query: %w", relaierrors.ErrInvalidRepository)
	}
	return github.RepositoryRef{Owner: in.Owner, Repo: in.Repo}, nil
}
