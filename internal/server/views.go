package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/raysh454/employeesapp/internal/employees"
)

const appName = "EmployeesApp"

const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8" />
    <title>{{.Title}} - ` + appName + `</title>
</head>
<body>
    <nav class="main-nav">
        <a href="/Employees">Employees</a> |
        <a href="/Employees/Create">Create New</a>
    </nav>
    <main>
{{template "content" .}}
    </main>
</body>
</html>{{end}}`

const indexHTML = `{{define "content"}}
        <h1>Index</h1>
        <p><a href="/Employees/Create">Create New</a></p>
        <table class="table" id="employees">
            <thead>
                <tr><th>Name</th><th>Age</th><th>Account Number</th></tr>
            </thead>
            <tbody>
            {{- range .Employees}}
                <tr><td>{{.Name}}</td><td>{{.Age}}</td><td>{{.AccountNumber}}</td></tr>
            {{- end}}
            </tbody>
        </table>
{{end}}`

const createHTML = `{{define "content"}}
        <h1>Create</h1>
        <h4>Please provide a new employee data</h4>
        <form method="post" action="/Employees/Create">
            <div class="form-group">
                <label for="Name">Name</label>
                <input id="Name" name="Name" type="text" value="{{.Form.Name}}" />
                {{with index .Errors "Name"}}<span class="field-validation-error" id="Name-error">{{.}}</span>{{end}}
            </div>
            <div class="form-group">
                <label for="Age">Age</label>
                <input id="Age" name="Age" type="text" value="{{.Form.Age}}" />
                {{with index .Errors "Age"}}<span class="field-validation-error" id="Age-error">{{.}}</span>{{end}}
            </div>
            <div class="form-group">
                <label for="AccountNumber">Account Number</label>
                <input id="AccountNumber" name="AccountNumber" type="text" value="{{.Form.AccountNumber}}" />
                {{with index .Errors "AccountNumber"}}<span class="field-validation-error" id="AccountNumber-error">{{.}}</span>{{end}}
            </div>
            <input id="Create" type="submit" value="Create" />
            <input name="{{.FieldName}}" type="hidden" value="{{.Token}}" />
        </form>
{{end}}`

type indexPage struct {
	Title     string
	Employees []employees.Employee
}

// createForm echoes what was posted, Age included as typed.
type createForm struct {
	Name          string
	Age           string
	AccountNumber string
}

type createPage struct {
	Title     string
	Form      createForm
	Errors    employees.ValidationErrors
	FieldName string
	Token     string
}

type views struct {
	index  *template.Template
	create *template.Template
}

func parseViews() (*views, error) {
	base, err := template.New("layout").Parse(layoutHTML)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	page := func(name, src string) (*template.Template, error) {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.Parse(src); err != nil {
			return nil, fmt.Errorf("parse %s view: %w", name, err)
		}
		return t, nil
	}

	index, err := page("index", indexHTML)
	if err != nil {
		return nil, err
	}
	create, err := page("create", createHTML)
	if err != nil {
		return nil, err
	}
	return &views{index: index, create: create}, nil
}

// render buffers the page; nothing reaches w when the template fails.
func render(w http.ResponseWriter, status int, t *template.Template, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
